package workers

import (
	"context"
	"log"
	"time"

	"vampyr-backend/services"
)

// PollChatService pings the RAG chat service on an interval and logs
// availability flips, so an operator can see from the logs when the sidecar
// went down and came back. Chat requests themselves fail independently with
// 503 — this is observability only.
func PollChatService(ctx context.Context, rag *services.RAGClient, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	healthy := true // assume up so a dead service at boot logs immediately

	for {
		select {
		case <-ctx.Done():
			log.Println("Chat health prober stopped")
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := rag.Health(pingCtx)
			cancel()

			if err != nil && healthy {
				log.Printf("❌ Chat service unreachable: %v", err)
				healthy = false
			} else if err == nil && !healthy {
				log.Println("✅ Chat service reachable again")
				healthy = true
			}
		}
	}
}
