// Package report renders import session summaries in machine-readable
// formats.
package report

import (
	"encoding/json"
	"encoding/xml"
	"fmt"

	"github.com/rgriggs0072/fliptrack-ai/internal/logging"
	"github.com/rgriggs0072/fliptrack-ai/internal/session"
)

// Generator renders session summaries as JSON or XML.
type Generator struct {
	logger logging.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(logger logging.Logger) *Generator {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Generator{logger: logger}
}

// Generate renders the summary in the requested format (json or xml).
func (g *Generator) Generate(summary session.Summary, format string) ([]byte, error) {
	switch format {
	case "json":
		return g.generateJSON(summary)
	case "xml":
		return g.generateXML(summary)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *Generator) generateJSON(summary session.Summary) ([]byte, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return data, nil
}

func (g *Generator) generateXML(summary session.Summary) ([]byte, error) {
	data, err := xml.MarshalIndent(summary, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal XML report")
		return nil, fmt.Errorf("failed to marshal XML report: %w", err)
	}
	return []byte(xml.Header + string(data)), nil
}
