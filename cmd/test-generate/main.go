// cmd/test-generate provides a standalone CLI tool for testing prompt
// composition and image generation without the full server infrastructure.
// It talks to the real Gemini API and writes the image to a local file;
// no database, storage bucket or session layer is involved.
//
// Usage:
//
//	./test-generate -title "How to Cook Pasta" -style "Minimalist"
//	./test-generate -title "Go in 2026" -style "Tech/Futuristic" -color neon -output thumb.png
//	./test-generate -title "Desert Hike" -style "Photorealistic" -compose  # Show prompt only
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/clipcast/thumbgen/internal/genimg"
	"github.com/clipcast/thumbgen/internal/prompt"
)

func main() {
	title := flag.String("title", "", "Video title (required)")
	styleTag := flag.String("style", "", "Style tag, e.g. \"Minimalist\" (required)")
	colorTag := flag.String("color", "", "Optional color scheme tag, e.g. \"sunset\"")
	userPrompt := flag.String("prompt", "", "Optional free-form details")
	aspect := flag.String("aspect", genimg.DefaultAspectRatio, "Aspect ratio")
	output := flag.String("output", "", "Output image path (default: thumb_<unix>.png)")
	composeOnly := flag.Bool("compose", false, "Print the composed prompt and exit (no API call)")
	timeout := flag.Int("timeout", 120, "Generation timeout in seconds")

	flag.Parse()

	if *title == "" || *styleTag == "" {
		fmt.Println("Error: -title and -style flags are required")
		flag.Usage()
		os.Exit(1)
	}

	style, err := prompt.ParseStyle(*styleTag)
	if err != nil {
		log.Fatalf("❌ %v\n\nKnown styles:\n%s", err, formatTags(prompt.Styles()))
	}

	var scheme prompt.ColorScheme
	if *colorTag != "" {
		scheme, err = prompt.ParseColorScheme(*colorTag)
		if err != nil {
			log.Fatalf("❌ %v\n\nKnown color schemes:\n%s", err, formatTags(prompt.ColorSchemes()))
		}
	}

	composed, err := prompt.Compose(*title, style, scheme, *userPrompt, *aspect)
	if err != nil {
		log.Fatalf("❌ Failed to compose prompt: %v", err)
	}

	fmt.Printf("\n📝 Prompt:\n%s\n", composed)
	if *composeOnly {
		return
	}

	_ = godotenv.Load()
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("❌ GEMINI_API_KEY is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*timeout)*time.Second)
	defer cancel()

	client, err := genimg.NewClient(ctx, genimg.Config{
		APIKey: apiKey,
		Model:  os.Getenv("GEMINI_MODEL"),
	})
	if err != nil {
		log.Fatalf("❌ Failed to build generation client: %v", err)
	}

	fmt.Printf("\n🎨 Generating image...\n")
	start := time.Now()

	img, err := client.Generate(ctx, composed, *aspect)
	if err != nil {
		log.Fatalf("❌ Generation failed: %v", err)
	}

	path := *output
	if path == "" {
		path = fmt.Sprintf("thumb_%d.png", time.Now().Unix())
	}
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		log.Fatalf("❌ Failed to write output file: %v", err)
	}

	fmt.Printf("\n✅ Generation successful!\n")
	fmt.Printf("📁 Output: %s\n", path)
	fmt.Printf("📏 Dimensions: %dx%d\n", img.Width, img.Height)
	fmt.Printf("📦 Size: %s (%s)\n", formatBytes(int64(len(img.Data))), img.MIMEType)
	fmt.Printf("⏱️  Time: %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Println()
}

func formatTags(tags []string) string {
	result := ""
	for _, t := range tags {
		result += fmt.Sprintf("  • %s\n", t)
	}
	return result
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
