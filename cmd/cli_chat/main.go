package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"ai-tutor/internal/config"
	"ai-tutor/internal/db"
	"ai-tutor/internal/domain"
	"ai-tutor/internal/imagegen"
	"ai-tutor/internal/llm"
	"ai-tutor/internal/repository"
	"ai-tutor/internal/service"
)

// REPL local contra el supervisor, util para probar el ruteo y el streaming
// sin levantar el servidor HTTP.
func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	sessionRepo := repository.NewPgSessionRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	memoryRepo := repository.NewPgMemoryRepository(pool)

	upstreamTimeout := time.Duration(cfg.UpstreamTimeoutSeconds) * time.Second
	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMEmbeddingModel, upstreamTimeout, zap.NewStdLog(logger))

	var imageClient imagegen.Generator
	if cfg.ImageBaseURL != "" {
		imageClient = imagegen.NewHTTPClient(cfg.ImageBaseURL, cfg.ImageAPIKey, cfg.ImageModel, upstreamTimeout)
	}

	contextSvc := service.NewBasicContextService(messageRepo)
	memorySvc := service.NewMemoryService(llmClient, memoryRepo, logger)
	executors := map[domain.Tool]service.ToolExecutor{
		domain.ToolChat:         service.NewChatExecutor(llmClient),
		domain.ToolReport:       service.NewReportExecutor(llmClient),
		domain.ToolPresentation: service.NewPresentationExecutor(llmClient, imageClient, logger),
		domain.ToolDiagram:      service.NewDiagramExecutor(llmClient),
		domain.ToolImage:        service.NewImageExecutor(imageClient),
	}
	supervisor := service.NewSupervisor(logger, service.NewToolRouter(), executors, sessionRepo, messageRepo, contextSvc, memorySvc, nil, upstreamTimeout)

	threadID := uuid.NewString()
	userID := "cli_test_user"

	fmt.Printf("---- AI Tutor (thread %s, escribe 'salir' para terminar) ----\n", threadID)
	for {
		fmt.Print("Tu > ")
		text, err := reader.ReadString('\n')
		if err != nil {
			log.Fatalf("leer input: %v", err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "salir") || strings.EqualFold(text, "exit") {
			fmt.Println("Saliendo del chat...")
			return
		}

		sink, err := supervisor.HandleMessage(ctx, service.ChatInput{
			Message:  text,
			ThreadID: threadID,
			UserID:   userID,
			Language: cfg.DefaultLanguage,
		})
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}

		printStream(sink)
	}
}

func printStream(sink *service.EventSink) {
	for ev := range sink.Events() {
		switch ev.Type {
		case domain.EventRouting:
			fmt.Printf("[routing -> %s: %s]\n", ev.Tool, ev.Reason)
		case domain.EventToken:
			fmt.Print(ev.Token)
		case domain.EventMetadata:
			printMetadata(ev.Metadata)
		case domain.EventError:
			fmt.Printf("\n[error: %s]\n", ev.Err.Message)
		case domain.EventDone:
			fmt.Printf("\n[done: %s]\n", ev.Tool)
		}
	}
}

func printMetadata(md *domain.MessageMetadata) {
	if md == nil {
		return
	}
	if len(md.Slides) > 0 {
		fmt.Printf("\n[%d slides]\n", len(md.Slides))
		for i, s := range md.Slides {
			fmt.Printf("  %d. %s\n", i+1, s.Title)
		}
	}
	if md.Diagram != "" {
		fmt.Printf("\n[diagram, %d bytes of SVG]\n", len(md.Diagram))
	}
	if md.Image != nil {
		fmt.Printf("\n[image %s, model %s]\n", md.Image.MimeType, md.Image.Model)
	}
}
