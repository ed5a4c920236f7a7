package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"accordion/internal/config"
	"accordion/internal/content"
	"accordion/internal/faq"
	"accordion/internal/models"

	"gopkg.in/yaml.v3"
)

// ImportFile is the on-disk layout accepted by Import.
type ImportFile struct {
	Entries []faq.CreateEntryRequest `yaml:"entries"`
}

// Import reads FAQ entries from a YAML file and creates them through the
// admin API of a running server, in file order.
func Import(path string, cfg *config.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var file ImportFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(file.Entries) == 0 {
		return fmt.Errorf("%s contains no entries", path)
	}

	// Validate everything before the first request.
	for i := range file.Entries {
		if err := file.Entries[i].Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i+1, err)
		}
	}

	client := &http.Client{Timeout: 30 * time.Second}
	url := fmt.Sprintf("http://%s/admin/faqs", cfg.AdminAddr)

	for i, req := range file.Entries {
		entry, err := createEntry(client, url, cfg, req)
		if err != nil {
			return fmt.Errorf("entry %d (%q): %w", i+1, req.Question, err)
		}
		fmt.Printf("Imported %s: %s\n", entry.ID, entry.Question)

		for _, w := range content.GetContentWarnings(entry.Answer, string(entry.Format)) {
			fmt.Printf("  warning: %s\n", w)
		}
	}

	fmt.Printf("\n%d entries imported.\n", len(file.Entries))
	return nil
}

func createEntry(client *http.Client, url string, cfg *config.Config, req faq.CreateEntryRequest) (models.Entry, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return models.Entry{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(cfg.AdminUser, cfg.AdminPassword)

	resp, err := client.Do(httpReq)
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to call admin API: %w. Is the server running?", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return models.Entry{}, fmt.Errorf("failed to create entry (Status: %d): %s", resp.StatusCode, string(body))
	}

	var entry models.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return models.Entry{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return entry, nil
}
