package documents

import "encoding/json"

type createRequest struct {
	Title   *string         `json:"title"`
	Content json.RawMessage `json:"content"`
}

type updateRequest struct {
	Title   *string         `json:"title"`
	Content json.RawMessage `json:"content"`
}
