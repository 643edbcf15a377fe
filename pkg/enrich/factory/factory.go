package factory

import (
	"fmt"

	"vibe-curation-be/pkg/enrich"
	"vibe-curation-be/pkg/enrich/ollama"
)

func NewProvider(providerType, baseURL, modelName string) (enrich.Provider, error) {
	switch providerType {
	case "ollama", "":
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported enrichment provider: %s", providerType)
	}
}
