package preview

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"csvpack/internal/compiler"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const stylesheet = `
body { font-family: system-ui, sans-serif; margin: 2rem; color: #1f2328; }
table { border-collapse: collapse; margin-top: 1rem; }
th, td { border: 1px solid #d0d7de; padding: 0.25rem 0.6rem; text-align: left; }
th { background: #f6f8fa; }
.muted { color: #656d76; }
.error { color: #cf222e; }
`

func page(title string, body ...Node) Node {
	return Doctype(
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				TitleEl(Text(title+" | csvpack preview")),
				StyleEl(Raw(stylesheet)),
			),
			Body(
				Header(A(Href("/"), Strong(Text("csvpack preview")))),
				Main(Group(body)),
			),
		),
	)
}

func indexPage(snap *compiler.Snapshot, lastErr error) Node {
	var rows []Node
	for i := range snap.Tables {
		t := &snap.Tables[i]
		rows = append(rows, Tr(
			Td(A(Href("/tables/"+t.Name), Text(t.Name))),
			Td(Text(t.Kind)),
			Td(Text(strconv.Itoa(t.Rows))),
			Td(Text(t.KeyField)),
			Td(Class("muted"), Text(t.Source)),
		))
	}

	return page("Tables",
		H1(Text("Tables")),
		P(Class("muted"), Textf("run %s, %d bytes, %d strings",
			snap.Manifest.RunID, snap.Manifest.Size, snap.Manifest.Strings)),
		If(lastErr != nil, P(Class("error"), Textf("last refresh failed: %v", lastErr))),
		Table(
			THead(Tr(Th(Text("Table")), Th(Text("Kind")), Th(Text("Rows")), Th(Text("Key")), Th(Text("Source")))),
			TBody(rows...),
		),
	)
}

func rowTablePage(snap *compiler.Snapshot, t *compiler.TableData) Node {
	head := make([]Node, 0, len(t.Fields)+len(t.Localized))
	for _, f := range t.Fields {
		head = append(head, Th(Text(f.Name), Span(Class("muted"), Text(" "+f.Type))))
	}
	for _, l := range t.Localized {
		head = append(head, Th(Text(l.Field), Span(Class("muted"), Text(" localized"))))
	}

	body := make([]Node, 0, len(t.Records))
	for _, rec := range t.Records {
		cells := make([]Node, 0, len(head))
		for _, v := range rec {
			cells = append(cells, Td(Text(formatValue(v))))
		}
		for _, s := range snap.Localized(t, rec) {
			cells = append(cells, Td(Text(s)))
		}
		body = append(body, Tr(cells...))
	}

	return page(t.Name,
		H1(Text(t.Name)),
		P(Class("muted"), Textf("%s, key %s (%s), %d rows at offset %d", t.Source, t.KeyField, t.Role, t.Rows, t.Offset)),
		Table(THead(Tr(head...)), TBody(body...)),
	)
}

func matrixPage(t *compiler.TableData) Node {
	corner := ""
	if t.TableEntry.Matrix != nil {
		corner = t.TableEntry.Matrix.RowParam + " \\ " + t.TableEntry.Matrix.ColumnParam
	}
	head := []Node{Th(Text(corner))}
	for _, c := range t.Matrix.ColumnKeys {
		head = append(head, Th(Text(c)))
	}

	body := make([]Node, 0, len(t.Matrix.RowKeys))
	for i, rowKey := range t.Matrix.RowKeys {
		cells := []Node{Th(Text(rowKey))}
		for _, v := range t.Matrix.Grid[i] {
			cells = append(cells, Td(Text(v)))
		}
		body = append(body, Tr(cells...))
	}

	return page(t.Name,
		H1(Text(t.Name)),
		P(Class("muted"), Textf("%s, %d x %d at offset %d", t.Source, len(t.Matrix.RowKeys), len(t.Matrix.ColumnKeys), t.Offset)),
		Table(THead(Tr(head...)), TBody(body...)),
	)
}

func formatValue(v any) string {
	switch v := v.(type) {
	case []string:
		return strings.Join(v, "; ")
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	snap, _, lastErr := s.current()
	if snap == nil {
		renderHTML(w, http.StatusServiceUnavailable, page("Unavailable",
			H1(Text("No successful compile yet")),
			If(lastErr != nil, P(Class("error"), Textf("%v", lastErr))),
		))
		return
	}
	renderHTML(w, http.StatusOK, indexPage(snap, lastErr))
}

func (s *Server) table(w http.ResponseWriter, r *http.Request) {
	snap, _, _ := s.current()
	if snap == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	t, ok := snap.Table(chi.URLParam(r, "name"))
	if !ok {
		renderHTML(w, http.StatusNotFound, page("Not found", H1(Text("Table not found"))))
		return
	}
	if t.Matrix != nil {
		renderHTML(w, http.StatusOK, matrixPage(t))
		return
	}
	renderHTML(w, http.StatusOK, rowTablePage(snap, t))
}

func renderHTML(w http.ResponseWriter, status int, n Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = n.Render(w)
}
