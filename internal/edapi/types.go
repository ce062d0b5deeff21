package edapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type User struct {
	Id    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Thread is the typed view of a thread document, Raw keeps the document
// exactly as the api returned it.
type Thread struct {
	Id         int64  `json:"id"`
	Number     int64  `json:"number"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Content    string `json:"content"`
	Document   string `json:"document"`
	User       *User  `json:"user"`
	CreatedAt  string `json:"created_at"`
	ViewCount  int64  `json:"view_count"`
	ReplyCount int64  `json:"reply_count"`

	Raw json.RawMessage `json:"-"`
}

func (t *Thread) UnmarshalJSON(b []byte) error {
	type plain Thread
	var decoded plain
	err := json.Unmarshal(b, &decoded)
	if err != nil {
		return err
	}
	*t = Thread(decoded)
	t.Raw = append(json.RawMessage(nil), b...)
	return nil
}

func (t Thread) MarshalJSON() ([]byte, error) {
	if len(t.Raw) > 0 {
		return t.Raw, nil
	}
	type plain Thread
	return json.Marshal(plain(t))
}

// Author returns the display name of the poster, anonymous posts have no user.
func (t Thread) Author() string {
	if t.User == nil || t.User.Name == "" {
		return "Anonymous"
	}
	return t.User.Name
}

// Fields decodes the raw document into its top level fields.
func (t Thread) Fields() (map[string]json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if len(t.Raw) == 0 {
		return fields, nil
	}
	err := json.Unmarshal(t.Raw, &fields)
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// ListPage is a single page of a thread listing.
type ListPage struct {
	Threads []Thread
	// Count is the amount of items the page held before decoding, a page may
	// contain items that fail to decode.
	Count int
	// Total is the total amount of threads when the api reports it, -1 otherwise.
	Total int64
	// Skipped holds the decode errors of items that were dropped.
	Skipped []error
}

var listKeys = []string{"threads", "data", "items"}
var totalKeys = []string{"total", "count", "total_count"}

// decodeThreadList accepts the shapes a listing has been observed to come back in:
// {"threads": [...]}, {"data": [...]}, {"items": [...]} or a bare array.
func decodeThreadList(body []byte) (ListPage, error) {
	page := ListPage{Total: -1}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return page, nil
	}

	var items []json.RawMessage
	switch trimmed[0] {
	case '[':
		err := json.Unmarshal(trimmed, &items)
		if err != nil {
			return page, fmt.Errorf("decode thread array: %w", err)
		}
	case '{':
		var fields map[string]json.RawMessage
		err := json.Unmarshal(trimmed, &fields)
		if err != nil {
			return page, fmt.Errorf("decode thread listing: %w", err)
		}
		for _, key := range listKeys {
			value, ok := fields[key]
			if !ok {
				continue
			}
			err = json.Unmarshal(value, &items)
			if err != nil {
				continue
			}
			break
		}
		for _, key := range totalKeys {
			value, ok := fields[key]
			if !ok {
				continue
			}
			var total int64
			if json.Unmarshal(value, &total) == nil {
				page.Total = total
				break
			}
		}
	default:
		return page, fmt.Errorf("unexpected thread listing shape")
	}

	page.Count = len(items)
	for i, item := range items {
		var thread Thread
		err := json.Unmarshal(item, &thread)
		if err != nil {
			page.Skipped = append(page.Skipped, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		page.Threads = append(page.Threads, thread)
	}
	return page, nil
}

// decodeThread unwraps {"thread": {...}}, falling back to the bare document.
func decodeThread(body []byte) (Thread, error) {
	var wrapped struct {
		Thread json.RawMessage `json:"thread"`
	}
	err := json.Unmarshal(body, &wrapped)
	if err != nil {
		return Thread{}, err
	}

	inner := body
	if len(wrapped.Thread) > 0 && !bytes.Equal(wrapped.Thread, []byte("null")) {
		inner = wrapped.Thread
	}

	var thread Thread
	err = json.Unmarshal(inner, &thread)
	if err != nil {
		return Thread{}, err
	}
	return thread, nil
}
