package main

// CLIResult is the top-level envelope for every command's output.
type CLIResult struct {
	Command string `json:"command" msgpack:"command"`
	Results any    `json:"results" msgpack:"results"`
	Count   int    `json:"count" msgpack:"count"`
	Error   string `json:"error,omitempty" msgpack:"error,omitempty"`
}

// CLISuggestion is a serialization-friendly suggestion.
type CLISuggestion struct {
	File         string   `json:"file" msgpack:"file"`
	Line         int      `json:"line" msgpack:"line"`
	Column       int      `json:"column" msgpack:"column"`
	EndLine      int      `json:"end_line" msgpack:"end_line"`
	EndColumn    int      `json:"end_column" msgpack:"end_column"`
	Detector     string   `json:"detector" msgpack:"detector"`
	Description  string   `json:"description,omitempty" msgpack:"description,omitempty"`
	Text         string   `json:"text" msgpack:"text"`
	Replacements []string `json:"replacements" msgpack:"replacements"`

	// path is the file as read from disk, for source excerpts.
	path string
}
