package controller

import "github.com/gin-gonic/gin"

const apiVersion = "1.0.0"

// openAPIDocument builds the OpenAPI 3 document describing the service's
// endpoints, mounted under the given path.
func openAPIDocument(title, mountPath string) gin.H {
	return gin.H{
		"openapi": "3.1.0",
		"info": gin.H{
			"title":       title,
			"description": "API to fetch YouTube video transcripts",
			"version":     apiVersion,
		},
		"paths": gin.H{
			mountPath + "/": healthOperation(
				"Root",
				"Health check endpoint",
			),
			mountPath + "/health": healthOperation(
				"Health Check",
				"Detailed health check endpoint",
			),
		},
		"components": gin.H{
			"schemas": gin.H{
				"HealthResponse": gin.H{
					"type":     "object",
					"required": []string{"status", "message"},
					"properties": gin.H{
						"status":  gin.H{"type": "string", "title": "Status"},
						"message": gin.H{"type": "string", "title": "Message"},
					},
					"title": "HealthResponse",
				},
			},
		},
	}
}

func healthOperation(summary, description string) gin.H {
	return gin.H{
		"get": gin.H{
			"summary":     summary,
			"description": description,
			"responses": gin.H{
				"200": gin.H{
					"description": "Successful Response",
					"content": gin.H{
						"application/json": gin.H{
							"schema": gin.H{"$ref": "#/components/schemas/HealthResponse"},
						},
					},
				},
			},
		},
	}
}
