// Package internal hosts the store inspector, a dev-only HTTP page
// rendering raw badger contents. It must never be mounted on the
// public router.
package internal

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key    string
	Record string
	Time   string
	Size   string
}

type PageData struct {
	Prefix string
	Items  []InspectRow
}

// StartInspector serves the inspect page on its own port. The prefix
// query parameter selects the record set: "participant:" (default) or
// "message:". Values are CBOR-decoded into their numbered fields; this
// is a debugging aid, not an API.
func StartInspector(db *badger.DB, port int) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "participant:"
		}

		data := PageData{Prefix: prefix}
		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, toRow(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("127.0.0.1:%d", port), mux)
	}()
}

func toRow(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:    key,
		Record: decodeRecord(val),
		Time:   "--:--:--",
		Size:   strconv.Itoa(len(val)) + " bytes",
	}

	parts := strings.Split(key, ":")
	if len(parts) >= 2 && parts[0] == "message" {
		if tsNano, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
			row.Time = time.Unix(0, tsNano).Format("15:04:05")
		}
	}
	return row
}

// decodeRecord renders the stored value field by field. Both record
// types encode as int-keyed CBOR maps, so one generic decode covers
// participants and messages alike.
func decodeRecord(val []byte) string {
	var fields map[int]any
	if err := cbor.Unmarshal(val, &fields); err != nil {
		return "--------"
	}

	keys := make([]int, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	rendered := make([]string, 0, len(keys))
	for _, k := range keys {
		rendered = append(rendered, fmt.Sprintf("%d=%v", k, fields[k]))
	}
	return strings.Join(rendered, "  ")
}
