package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	baseURL = "http://localhost:8080"
)

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	// 1. Health
	fmt.Println("1. Health check...")
	if !sendRequest("GET", "/healthz", nil) {
		fmt.Println("FAILED: Health check")
		os.Exit(1)
	}
	fmt.Println("PASSED: Health check")

	// 2. Single product research
	fmt.Println("2. Researching a product...")
	payload := map[string]string{
		"barcode": "049000006346",
		"title":   "Coca-Cola Classic 12 oz Can",
	}
	if !sendRequest("POST", "/research", payload) {
		fmt.Println("FAILED: Research")
		os.Exit(1)
	}
	fmt.Println("PASSED: Research")

	// 3. Batch research
	fmt.Println("3. Running a small batch...")
	batchPayload := map[string]interface{}{
		"products": []map[string]string{
			{"barcode": "049000006346", "title": "Coca-Cola Classic 12 oz Can"},
			{"barcode": "012000161551", "title": "Pepsi 12 oz Can"},
		},
	}
	if !sendRequest("POST", "/research/batch", batchPayload) {
		fmt.Println("FAILED: Batch research")
		os.Exit(1)
	}
	fmt.Println("PASSED: Batch research")
}

func sendRequest(method, endpoint string, payload interface{}) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Response: %s\n", string(respBody))

	return true
}
