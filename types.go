package docspell

import (
	"github.com/jward/docspell/internal/config"
	"github.com/jward/docspell/internal/doc"
	"github.com/jward/docspell/internal/logging"
	"github.com/jward/docspell/internal/suggestion"
)

// Public type aliases for internal types used in the Engine API.
// These are Go type aliases (=), identical to the internal types at compile
// time.

type Config = config.Config
type Documentation = doc.Documentation
type Chunk = doc.Chunk
type Origin = doc.Origin
type Suggestion = suggestion.Suggestion
type SuggestionSet = suggestion.Set
type Detector = suggestion.Detector
type Logger = logging.Logger
