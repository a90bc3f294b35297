// Command preview is a headless preview client: it prints the pipeline
// status, then connects to the scancam preview websocket and saves a number
// of JPEG frames to disk.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gorilla/websocket"

	"github.com/openscan/go-scancam/internal/httpc"
)

func main() {
	server := flag.String("server", "localhost:8080", "scancam server host:port")
	count := flag.Int("count", 10, "number of frames to save")
	outDir := flag.String("out", ".", "output directory for frames")
	flag.Parse()

	// Status first, so a misconfigured pipeline is obvious before waiting
	// on frames that will never come.
	resp, err := httpc.Get(fmt.Sprintf("http://%s/api/status", *server))
	if err != nil {
		log.Fatalf("status request failed: %v", err)
	}
	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		resp.Body.Close()
		log.Fatalf("status decode failed: %v", err)
	}
	resp.Body.Close()
	fmt.Printf("pipeline: state=%v device_absent=%v preset=%v\n",
		status["state"], status["device_absent"], status["effective_preset"])

	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws/preview", *server), nil)
	if err != nil {
		log.Fatalf("websocket dial failed: %v", err)
	}
	defer conn.Close()

	saved := 0
	for saved < *count {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("read failed after %d frames: %v", saved, err)
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		name := filepath.Join(*outDir, fmt.Sprintf("preview_%04d.jpg", saved))
		if err := os.WriteFile(name, data, 0o644); err != nil {
			log.Fatalf("write %s: %v", name, err)
		}
		saved++
	}
	fmt.Printf("saved %d frames to %s\n", saved, *outDir)
}
