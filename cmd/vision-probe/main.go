package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/raine/career-tracker/internal/config"
	"github.com/raine/career-tracker/internal/extract"
	"github.com/raine/career-tracker/internal/vision"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <image-path> [claude|gemini|both]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
		fmt.Fprintf(os.Stderr, "  ANTHROPIC_API_KEY - Required for Claude\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY    - Required for Gemini\n")
		os.Exit(1)
	}

	imagePath := os.Args[1]
	provider := "both"
	if len(os.Args) >= 3 {
		provider = os.Args[2]
	}

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read image: %v\n", err)
		os.Exit(1)
	}

	if dir, err := config.Dir(); err == nil {
		config.LoadEnvFile(dir)
	}

	mimeType := vision.DetectMIMEType(imagePath, imageData)
	ctx := context.Background()

	switch provider {
	case config.ProviderClaude:
		runClaude(ctx, imageData, mimeType)
	case config.ProviderGemini:
		runGemini(ctx, imageData, mimeType)
	case "both":
		runClaude(ctx, imageData, mimeType)
		fmt.Println("\n" + strings.Repeat("-", 50) + "\n")
		runGemini(ctx, imageData, mimeType)
	default:
		fmt.Fprintf(os.Stderr, "Unknown provider: %s (use claude, gemini, or both)\n", provider)
		os.Exit(1)
	}
}

func runClaude(ctx context.Context, imageData []byte, mimeType string) {
	fmt.Println("=== CLAUDE ===")

	analyzer := vision.NewClaudeAnalyzer(vision.ClaudeOpts{APIKey: os.Getenv("ANTHROPIC_API_KEY")})
	reply, err := analyzer.Analyze(ctx, imageData, mimeType)
	if err != nil {
		fmt.Printf("Error analyzing image: %v\n", err)
		return
	}

	printReply(reply)
}

func runGemini(ctx context.Context, imageData []byte, mimeType string) {
	fmt.Println("=== GEMINI ===")

	analyzer, err := vision.NewGeminiAnalyzer(ctx, os.Getenv("GEMINI_API_KEY"), "", 0)
	if err != nil {
		fmt.Printf("Error creating Gemini analyzer: %v\n", err)
		return
	}

	reply, err := analyzer.Analyze(ctx, imageData, mimeType)
	if err != nil {
		fmt.Printf("Error analyzing image: %v\n", err)
		return
	}

	printReply(reply)
}

func printReply(reply *vision.Reply) {
	ex := extract.Interpret(reply.Text)

	fmt.Printf("Model:      %s\n", reply.Model)
	fmt.Printf("Type:       %s\n", ex.Type)
	fmt.Printf("Confidence: %.2f\n", ex.Confidence)
	if ex.HasData() {
		fmt.Printf("Data:       %s\n", ex.Data)
	}
	for _, e := range ex.Errors {
		fmt.Printf("Error:      %s\n", e)
	}
	fmt.Println()
	fmt.Printf("Tokens:     %d in / %d out / %d total\n",
		reply.Usage.InputTokens, reply.Usage.OutputTokens, reply.Usage.TotalTokens)
	fmt.Printf("Cost:       $%.6f\n", reply.Usage.CostUSD)
}
