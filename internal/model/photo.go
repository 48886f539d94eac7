package model

import "time"

// Photo is gallery photo metadata. The payload is fetched separately.
type Photo struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	MIME      string    `json:"mime"`
	CreatedAt time.Time `json:"created_at"`
}

// Blob is a stored image payload.
type Blob struct {
	Data []byte
	MIME string
}
