package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/starford/voicecanvas/internal/models"
	"github.com/starford/voicecanvas/internal/notestore"
	"github.com/starford/voicecanvas/internal/testutil"
)

func newTestServer(t *testing.T) (*httptest.Server, *notestore.Store) {
	t.Helper()
	store := testutil.TestStore(t)
	srv := httptest.NewServer(NewRouter(store, false, "", nil))
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestNoteCRUD(t *testing.T) {
	srv, _ := newTestServer(t)

	// Create.
	resp := doJSON(t, http.MethodPost, srv.URL+"/notes", CreateNoteRequest{})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	note := decodeBody[models.Note](t, resp)
	if note.Title != "Untitled Note" {
		t.Errorf("title = %q", note.Title)
	}

	// Read.
	resp = doJSON(t, http.MethodGet, srv.URL+"/notes/"+note.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}

	// Update.
	resp = doJSON(t, http.MethodPut, srv.URL+"/notes/"+note.ID, UpdateNoteRequest{
		Title:   "Standup",
		Content: "notes",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d", resp.StatusCode)
	}
	updated := decodeBody[models.Note](t, resp)
	if updated.Title != "Standup" || updated.Content != "notes" {
		t.Errorf("updated = %+v", updated)
	}
	if updated.UpdatedAt < note.UpdatedAt {
		t.Error("UpdatedAt went backwards")
	}

	// List.
	resp = doJSON(t, http.MethodGet, srv.URL+"/notes", nil)
	list := decodeBody[NoteListResponse](t, resp)
	if list.Total != 1 {
		t.Errorf("total = %d", list.Total)
	}

	// Delete, twice: the second is an idempotent no-op.
	for i := 0; i < 2; i++ {
		resp = doJSON(t, http.MethodDelete, srv.URL+"/notes/"+note.ID, nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("delete #%d status = %d", i+1, resp.StatusCode)
		}
	}
}

func TestGetNoteNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, http.MethodGet, srv.URL+"/notes/ghost", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestUpdateNoteNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, http.MethodPut, srv.URL+"/notes/ghost", UpdateNoteRequest{Title: "x"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestListNotesSearchAndFolderFilter(t *testing.T) {
	srv, store := newTestServer(t)

	f, err := store.CreateFolder("Work")
	if err != nil {
		t.Fatal(err)
	}
	a, _ := store.CreateNote(f.ID)
	a.Title = "Grocery list"
	store.UpdateNote(a)
	b, _ := store.CreateNote("")
	b.Title = "Standup"
	store.UpdateNote(b)

	resp := doJSON(t, http.MethodGet, srv.URL+"/notes?q=grocery", nil)
	list := decodeBody[NoteListResponse](t, resp)
	if list.Total != 1 || list.Notes[0].ID != a.ID {
		t.Errorf("search result: %+v", list)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/notes?folder="+f.ID, nil)
	list = decodeBody[NoteListResponse](t, resp)
	if list.Total != 1 || list.Notes[0].ID != a.ID {
		t.Errorf("folder filter: %+v", list)
	}
}

func TestCurrentNoteEndpoints(t *testing.T) {
	srv, store := newTestServer(t)

	a, _ := store.CreateNote("")
	b, _ := store.CreateNote("")
	_ = b

	resp := doJSON(t, http.MethodPut, srv.URL+"/notes/current", ToggleSelectRequest{ID: a.ID})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("set current status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/notes/current", nil)
	body := decodeBody[map[string]models.Note](t, resp)
	if body["note"].ID != a.ID {
		t.Errorf("current = %+v", body["note"])
	}
}

func TestBulkDeleteNotes(t *testing.T) {
	srv, store := newTestServer(t)

	a, _ := store.CreateNote("")
	b, _ := store.CreateNote("")
	keep, _ := store.CreateNote("")

	resp := doJSON(t, http.MethodPost, srv.URL+"/notes/bulk-delete", BulkDeleteRequest{IDs: []string{a.ID, b.ID}})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(store.Notes()) != 1 {
		t.Errorf("notes left = %d", len(store.Notes()))
	}
	if _, ok := store.Note(keep.ID); !ok {
		t.Error("unlisted note deleted")
	}
}

func TestFolderEndpoints(t *testing.T) {
	srv, store := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/folders", FolderRequest{Name: "Work"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	folder := decodeBody[models.Folder](t, resp)

	// Empty name rejected.
	resp = doJSON(t, http.MethodPost, srv.URL+"/folders", FolderRequest{Name: "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank name status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/folders/"+folder.ID, FolderRequest{Name: "Projects"})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("rename status = %d", resp.StatusCode)
	}
	if store.Folders()[0].Name != "Projects" {
		t.Error("rename not applied")
	}

	n, _ := store.CreateNote(folder.ID)
	resp = doJSON(t, http.MethodDelete, srv.URL+"/folders/"+folder.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	got, ok := store.Note(n.ID)
	if !ok || got.FolderID != "" {
		t.Error("note not unfiled by folder delete")
	}
}

func TestReorderEndpoints(t *testing.T) {
	srv, store := newTestServer(t)

	store.CreateFolder("A")
	store.CreateFolder("B")
	resp := doJSON(t, http.MethodPost, srv.URL+"/folders/reorder", ReorderRequest{SourceIndex: 0, DestIndex: 1})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("folder reorder status = %d", resp.StatusCode)
	}
	if store.Folders()[0].Name != "B" {
		t.Error("folders not reordered")
	}

	store.CreateNote("")
	store.CreateNote("")
	resp = doJSON(t, http.MethodPost, srv.URL+"/notes/reorder", ReorderRequest{SourceIndex: 0, DestIndex: 1})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("note reorder status = %d", resp.StatusCode)
	}
}

func TestSelectionEndpoints(t *testing.T) {
	srv, store := newTestServer(t)

	f, _ := store.CreateFolder("Work")
	a, _ := store.CreateNote("")
	b, _ := store.CreateNote("")

	resp := doJSON(t, http.MethodPost, srv.URL+"/selection/toggle", ToggleSelectRequest{ID: a.ID})
	sel := decodeBody[SelectionResponse](t, resp)
	if len(sel.Selected) != 1 || sel.Selected[0] != a.ID {
		t.Fatalf("selected = %v", sel.Selected)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/selection/all", SelectAllRequest{})
	sel = decodeBody[SelectionResponse](t, resp)
	if len(sel.Selected) != 2 {
		t.Fatalf("select all = %v", sel.Selected)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/selection/range", SelectRangeRequest{
		AnchorID: a.ID, TargetID: b.ID, Ordered: []string{a.ID, b.ID},
	})
	sel = decodeBody[SelectionResponse](t, resp)
	if len(sel.Selected) != 2 {
		t.Fatalf("select range = %v", sel.Selected)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/selection/move", MoveSelectionRequest{FolderID: f.ID})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("move status = %d", resp.StatusCode)
	}
	for _, id := range []string{a.ID, b.ID} {
		if n, _ := store.Note(id); n.FolderID != f.ID {
			t.Errorf("note %s not moved", id)
		}
	}
	if len(store.Selected()) != 0 {
		t.Error("selection not cleared after move")
	}

	store.ToggleSelect(a.ID)
	resp = doJSON(t, http.MethodPost, srv.URL+"/selection/delete", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete selection status = %d", resp.StatusCode)
	}
	if _, ok := store.Note(a.ID); ok {
		t.Error("selected note survived")
	}

	store.ToggleSelect(b.ID)
	resp = doJSON(t, http.MethodDelete, srv.URL+"/selection", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("clear status = %d", resp.StatusCode)
	}
	if len(store.Selected()) != 0 {
		t.Error("selection not cleared")
	}
}

func TestSaveAndRenameRecording(t *testing.T) {
	srv, store := newTestServer(t)

	n, _ := store.CreateNote("")
	resp := doJSON(t, http.MethodPost, srv.URL+"/notes/"+n.ID+"/recordings", SaveRecordingRequest{
		AudioURL: "blob-1",
		Duration: 2.5,
		Name:     "Standup",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("save status = %d", resp.StatusCode)
	}
	note := decodeBody[models.Note](t, resp)
	if len(note.Recordings) != 1 || note.Recordings[0].Name != "Standup" {
		t.Fatalf("recordings = %+v", note.Recordings)
	}
	recID := note.Recordings[0].ID

	// Negative duration rejected.
	resp = doJSON(t, http.MethodPost, srv.URL+"/notes/"+n.ID+"/recordings", SaveRecordingRequest{
		AudioURL: "blob-2",
		Duration: -1,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid duration status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPatch, srv.URL+"/notes/"+n.ID+"/recordings/"+recID, RenameRecordingRequest{Name: "Renamed"})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("rename status = %d", resp.StatusCode)
	}
	got, _ := store.Note(n.ID)
	if got.Recordings[0].Name != "Renamed" {
		t.Error("rename not applied")
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/notes/"+n.ID+"/recordings/"+recID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
}

func TestImportAndExportRecording(t *testing.T) {
	srv, store := newTestServer(t)

	n, _ := store.CreateNote("")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", `form-data; name="file"; filename="standup.wav"`)
	partHeader.Set("Content-Type", "audio/wav")
	fw, err := mw.CreatePart(partHeader)
	if err != nil {
		t.Fatal(err)
	}
	wav := testutil.WAVBytes(t, 1.0)
	if _, err := fw.Write(wav); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/notes/"+n.ID+"/recordings/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("import status = %d", resp.StatusCode)
	}
	note := decodeBody[models.Note](t, resp)
	if len(note.Recordings) != 1 || note.Recordings[0].Name != "standup" {
		t.Fatalf("recordings = %+v", note.Recordings)
	}

	recID := note.Recordings[0].ID
	expResp := doJSON(t, http.MethodGet, fmt.Sprintf("%s/notes/%s/recordings/%s/export", srv.URL, n.ID, recID), nil)
	if expResp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", expResp.StatusCode)
	}
	disp := expResp.Header.Get("Content-Disposition")
	if !strings.Contains(disp, "attachment") {
		t.Errorf("disposition = %q", disp)
	}
}

func TestExportRecordingMissingBlob(t *testing.T) {
	srv, store := newTestServer(t)

	n, _ := store.CreateNote("")
	if err := store.SaveRecording(n.ID, notestore.RecordingData{AudioURL: "gone", Duration: 1}, "x"); err != nil {
		t.Fatal(err)
	}
	got, _ := store.Note(n.ID)
	recID := got.Recordings[0].ID

	resp := doJSON(t, http.MethodGet, fmt.Sprintf("%s/notes/%s/recordings/%s/export", srv.URL, n.ID, recID), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestExportNoteText(t *testing.T) {
	srv, store := newTestServer(t)

	n, _ := store.CreateNote("")
	n.Title = "Standup"
	n.Content = "notes body"
	store.UpdateNote(n)

	resp := doJSON(t, http.MethodGet, srv.URL+"/notes/"+n.ID+"/export", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
	var body bytes.Buffer
	if _, err := body.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(body.String(), "Standup\n\n") {
		t.Errorf("body = %q", body.String())
	}
}

func TestAuthMiddleware(t *testing.T) {
	store := testutil.TestStore(t)
	srv := httptest.NewServer(NewRouter(store, true, "secret", nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/notes")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token status = %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/notes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong token status = %d", resp.StatusCode)
	}

	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("valid token status = %d", resp.StatusCode)
	}
}
