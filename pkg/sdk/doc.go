// Package ocrchat is an in-process client for chatting with a language model about
// uploaded documents: plain text, PDF or images run through OCR.
//
// The client wires the same pipeline the HTTP server uses: document ingestion, the OCR
// backend fallback chain, the per-model context budget and a chat provider.
//
//	client, _ := ocrchat.New(
//	    ocrchat.WithOllama("http://localhost:11434"),
//	    ocrchat.WithLanguages("ru-RU", "en-US"),
//	)
//	resp, _ := client.Chat(ctx, ocrchat.ChatRequest{
//	    Model:  "qwen3:4b",
//	    Prompt: "What is the total?",
//	    Upload: &ocrchat.Document{Filename: "receipt.png", Data: img},
//	})
//	fmt.Println(resp.Reply)
//
// Extract text only:
//
//	ext, _ := client.Ingest(ctx, ocrchat.Document{Filename: "report.pdf", Data: pdf}, "")
package ocrchat
