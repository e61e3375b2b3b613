package source

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/Makepad-fr/transmit/internal/model"
)

//go:embed fixtures/transmittals.json
var fixturesJSON []byte

// Fixtures returns the mock transmittals the mock source starts with.
// Four of the ten are drafts.
func Fixtures() []model.Transmittal {
	var items []model.Transmittal
	if err := json.Unmarshal(fixturesJSON, &items); err != nil {
		panic(fmt.Sprintf("source: embedded fixtures: %v", err))
	}
	return items
}
