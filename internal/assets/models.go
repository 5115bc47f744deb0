package assets

import _ "embed"

// ModelsData holds the raw JSON catalogue of video models.
//
//go:embed models.json
var ModelsData []byte
