package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/kitchenos/internal/menu"
)

type jsonExport struct {
	ExportedAt string `json:"exported_at"`
	MenuID     string `json:"menu_id,omitempty"`
	Period     string `json:"period,omitempty"`
	Count      int    `json:"count"`
	Meals      []row  `json:"meals"`
}

func ToJSON(m *menu.Menu, path string) error {
	meals := rows(m)
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(meals),
		Meals:      meals,
	}
	if m != nil {
		export.MenuID = m.ID
		export.Period = menu.FormatDateRange(m.WeekStart, m.WeekEnd)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
