package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

var baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token := os.Getenv("PROBE_TOKEN"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func decode(body []byte) map[string]interface{} {
	var v map[string]interface{}
	json.Unmarshal(body, &v)
	return v
}

func sessionID(body []byte) string {
	v := decode(body)
	data, _ := v["data"].(map[string]interface{})
	id, _ := data["id"].(string)
	return id
}

func main() {
	if url := os.Getenv("PROBE_BASE_URL"); url != "" {
		baseURL = url
	}

	color.Cyan("🚀 Starting Curation API Probe\n")

	// 1. Start a session from a seed query
	color.Yellow("\n1. Start Session")
	resp, body, err := sendRequest("POST", "/curation/sessions", map[string]interface{}{
		"seed_query": "moody foggy forest",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	id := sessionID(body)
	if id == "" {
		color.Red("No session id in response, aborting")
		os.Exit(1)
	}

	// 2. Analyze new text (optimistic fetch racing enrichment)
	color.Yellow("\n2. Analyze Text")
	resp, body, err = sendRequest("POST", "/curation/sessions/"+id+"/analyze", map[string]interface{}{
		"text": "a lonely dark silhouette against the horizon",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 3. Accept the first visible slot
	color.Yellow("\n3. Accept Slot 0")
	resp, body, err = sendRequest("POST", "/curation/sessions/"+id+"/accept", map[string]interface{}{
		"slot": 0,
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 4. Reject the first visible slot
	color.Yellow("\n4. Reject Slot 0")
	resp, body, err = sendRequest("POST", "/curation/sessions/"+id+"/reject", map[string]interface{}{
		"slot": 0,
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 5. Manual research reset
	color.Yellow("\n5. Manual Research")
	resp, body, err = sendRequest("POST", "/curation/sessions/"+id+"/research", map[string]interface{}{
		"text": "minimalist white architecture",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 6. Fetch the current state
	color.Yellow("\n6. Get Session")
	resp, body, err = sendRequest("GET", "/curation/sessions/"+id, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 7. Delete the session
	color.Yellow("\n7. Delete Session")
	resp, _, err = sendRequest("DELETE", "/curation/sessions/"+id, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	color.Cyan("\n✅ Probe finished")
}
