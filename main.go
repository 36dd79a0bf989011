package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"klimacheck/classifier"
	"klimacheck/client"
	"klimacheck/config"
	"klimacheck/handler"
	"klimacheck/service"
)

func main() {
	cfg := config.LoadConfig()

	// The model artifacts are part of the deployment; a service without them
	// cannot make a single decision, so a load failure is fatal.
	clf, err := classifier.Load(cfg.ModelsDir)
	if err != nil {
		log.Fatalf("Failed to load document classifier from %s: %v", cfg.ModelsDir, err)
	}

	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath)
	defer tesseractClient.Close()

	pdfProcessor := service.NewPDFProcessor(tesseractClient)
	decisionService := service.NewDecisionService(cfg)
	caseService := service.NewCaseService(pdfProcessor, clf, decisionService)
	verificationHandler := handler.NewVerificationHandler(caseService)

	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxFileSize

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/applications/verify", verificationHandler.VerifyApplication)
	}

	log.Printf("Starting server on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
