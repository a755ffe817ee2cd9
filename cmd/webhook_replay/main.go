package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// webhook_replay fires the same payment notification many times, split
// between the current and the legacy callback URLs, and reports how the
// server answered. A healthy server answers every delivery with the same
// status.
func main() {
	app := &cli.App{
		Name:  "webhook_replay",
		Usage: "replay one payment notification concurrently against both callback URLs",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "base-url", Value: "http://localhost:8080"},
			&cli.StringFlag{Name: "payment-id", Required: true, Usage: "provider payment id to notify about"},
			&cli.IntFlag{Name: "requests", Value: 50},
			&cli.DurationFlag{Name: "timeout", Value: 10 * time.Second},
		},
		Action: replay,
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("replay failed")
	}
}

var paths = []string{"/mercadopago/webhook", "/mercadopago/oauth/callback"}

func replay(c *cli.Context) error {
	baseURL := c.String("base-url")
	paymentID := c.String("payment-id")
	total := c.Int("requests")
	client := &http.Client{Timeout: c.Duration("timeout")}

	deliveryID := uuid.NewString()
	body, err := notificationBody(deliveryID, paymentID)
	if err != nil {
		return err
	}

	var (
		mu       sync.Mutex
		statuses = map[string]map[int]int{}
		errCount atomic.Int32
		wg       sync.WaitGroup
	)
	for _, p := range paths {
		statuses[p] = map[int]int{}
	}

	start := time.Now()
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := paths[i%len(paths)]

			status, err := send(c.Context, client, notificationURL(baseURL, path, paymentID), body)
			if err != nil {
				errCount.Add(1)
				logrus.WithError(err).WithField("path", path).Warn("delivery failed")
				return
			}
			mu.Lock()
			statuses[path][status]++
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	fmt.Println("========== WEBHOOK REPLAY RESULTS ==========")
	fmt.Printf("Payment ID:       %s\n", paymentID)
	fmt.Printf("Delivery ID:      %s\n", deliveryID)
	fmt.Printf("Total Requests:   %d\n", total)
	fmt.Printf("Transport Errors: %d\n", errCount.Load())
	for _, p := range paths {
		fmt.Printf("%-28s %v\n", p, statuses[p])
	}
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("============================================")

	if consistent(statuses) && errCount.Load() == 0 {
		fmt.Println("PASS: every delivery got the same answer on both URLs")
		return nil
	}
	return cli.Exit("FAIL: deliveries were answered inconsistently", 1)
}

func notificationURL(baseURL, path, paymentID string) string {
	q := url.Values{}
	q.Set("type", "payment")
	q.Set("data.id", paymentID)
	return baseURL + path + "?" + q.Encode()
}

type notification struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

func notificationBody(deliveryID, paymentID string) (string, error) {
	n := notification{ID: deliveryID, Type: "payment", Action: "payment.updated"}
	n.Data.ID = paymentID
	b, err := json.Marshal(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func send(ctx context.Context, client *http.Client, target, body string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewBufferString(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func consistent(statuses map[string]map[int]int) bool {
	seen := map[int]bool{}
	for _, byStatus := range statuses {
		for status := range byStatus {
			seen[status] = true
		}
	}
	return len(seen) == 1
}
