package preview

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"csvpack/internal/compiler"
	"csvpack/internal/middleware"
)

type tableSummary struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Source   string `json:"source"`
	Rows     int    `json:"rows"`
	Offset   int    `json:"offset"`
	Length   int    `json:"length"`
	KeyField string `json:"key_field,omitempty"`
	Role     string `json:"role,omitempty"`
}

type tableDetail struct {
	tableSummary
	Columns []string         `json:"columns,omitempty"`
	Records []map[string]any `json:"records,omitempty"`
	Matrix  *matrixView      `json:"matrix,omitempty"`
}

type matrixView struct {
	Function    string     `json:"function"`
	ColumnParam string     `json:"column_param"`
	RowParam    string     `json:"row_param"`
	ValueType   string     `json:"value_type"`
	ColumnKeys  []string   `json:"column_keys"`
	RowKeys     []string   `json:"row_keys"`
	Grid        [][]string `json:"grid"`
}

func summarize(t *compiler.TableData) tableSummary {
	return tableSummary{
		Name:     t.Name,
		Kind:     t.Kind,
		Source:   t.Source,
		Rows:     t.Rows,
		Offset:   t.Offset,
		Length:   t.Length,
		KeyField: t.KeyField,
		Role:     t.Role,
	}
}

// columns lists encoded fields, then localized fields.
func columns(t *compiler.TableData) []string {
	cols := make([]string, 0, len(t.Fields)+len(t.Localized))
	for _, f := range t.Fields {
		cols = append(cols, f.Name)
	}
	for _, l := range t.Localized {
		cols = append(cols, l.Field)
	}
	return cols
}

func detail(snap *compiler.Snapshot, t *compiler.TableData) tableDetail {
	d := tableDetail{tableSummary: summarize(t)}
	if t.Matrix != nil {
		d.Matrix = &matrixView{
			ColumnKeys: t.Matrix.ColumnKeys,
			RowKeys:    t.Matrix.RowKeys,
			Grid:       t.Matrix.Grid,
		}
		if t.TableEntry.Matrix != nil {
			d.Matrix.Function = t.TableEntry.Matrix.Function
			d.Matrix.ColumnParam = t.TableEntry.Matrix.ColumnParam
			d.Matrix.RowParam = t.TableEntry.Matrix.RowParam
			d.Matrix.ValueType = t.TableEntry.Matrix.ValueType
		}
		return d
	}

	d.Columns = columns(t)
	d.Records = make([]map[string]any, 0, len(t.Records))
	for _, rec := range t.Records {
		row := make(map[string]any, len(d.Columns))
		for i, f := range t.Fields {
			row[f.Name] = rec[i]
		}
		for i, v := range snap.Localized(t, rec) {
			row[t.Localized[i].Field] = v
		}
		d.Records = append(d.Records, row)
	}
	return d
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	snap, builtAt, lastErr := s.current()
	body := map[string]any{"status": "ok"}
	status := http.StatusOK
	if snap != nil {
		body["run_id"] = snap.Manifest.RunID
		body["built_at"] = builtAt.UTC().Format(time.RFC3339)
		body["tables"] = len(snap.Tables)
	}
	if lastErr != nil {
		body["status"] = "degraded"
		body["last_error"] = lastErr.Error()
	}
	if snap == nil {
		body["status"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, body)
}

func (s *Server) apiTables(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.requireSnapshot(w, r)
	if !ok {
		return
	}
	out := make([]tableSummary, 0, len(snap.Tables))
	for i := range snap.Tables {
		out = append(out, summarize(&snap.Tables[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"run_id": snap.Manifest.RunID, "tables": out})
}

func (s *Server) apiTable(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.requireSnapshot(w, r)
	if !ok {
		return
	}
	t, ok := snap.Table(chi.URLParam(r, "name"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "table not found")
		return
	}
	writeJSON(w, http.StatusOK, detail(snap, t))
}

func (s *Server) apiString(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.requireSnapshot(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "key")
	value, found := snap.Strings.Lookup(key)
	if !found {
		writeError(w, r, http.StatusNotFound, "string not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

func (s *Server) requireSnapshot(w http.ResponseWriter, r *http.Request) (*compiler.Snapshot, bool) {
	snap, _, _ := s.current()
	if snap == nil {
		writeError(w, r, http.StatusServiceUnavailable, "no successful compile yet")
		return nil, false
	}
	return snap, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, map[string]any{
		"code":       status,
		"message":    message,
		"request_id": middleware.RequestIDFromContext(r.Context()),
	})
}
