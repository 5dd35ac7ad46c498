package web

import (
	"errors"
	"net/http"

	"church/internal/adapters/http/middleware"
	"church/internal/application/collection"
	"church/internal/application/console"
	"church/internal/application/sections"
	"church/internal/domain/localized"
	"church/internal/platform/i18n"
)

type adminPage struct {
	Sections []string
	Langs    []localized.Lang
}

// handleAdminPage renders the console shell; content arrives over the API and websocket.
func handleAdminPage(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, http.StatusOK, "admin.html", requestLang(w, r), adminPage{
		Sections: sections.Names,
		Langs:    localized.Langs,
	})
}

// consoleFor returns the console of the calling admin session, opening it on first use.
func consoleFor(w http.ResponseWriter, r *http.Request) (*console.Console, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return nil, false
	}
	c, err := deps.Consoles.Get(sess.Token)
	if err != nil {
		internalError(w, err)
		return nil, false
	}
	return c, true
}

func sectionFor(w http.ResponseWriter, r *http.Request) (console.Section, bool) {
	c, ok := consoleFor(w, r)
	if !ok {
		return nil, false
	}
	s, err := c.Section(r.PathValue("section"))
	if errors.Is(err, console.ErrUnknownSection) {
		jsonError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	if err != nil {
		internalError(w, err)
		return nil, false
	}
	return s, true
}

// editorError maps editor errors to status codes with a localized message.
func editorError(w http.ResponseWriter, lang localized.Lang, err error) {
	switch {
	case errors.Is(err, collection.ErrNoRecord):
		jsonError(w, http.StatusNotFound, i18n.Error(lang, collection.ErrNoRecord))
	case errors.Is(err, collection.ErrBusy), errors.Is(err, collection.ErrNoPending):
		jsonError(w, http.StatusConflict, i18n.Error(lang, err))
	case errors.Is(err, collection.ErrUnknownField), errors.Is(err, collection.ErrFieldType):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, collection.ErrClosed):
		jsonError(w, http.StatusGone, err.Error())
	case errors.Is(err, collection.ErrDeleteFailed):
		jsonError(w, http.StatusBadGateway, i18n.Error(lang, err))
	default:
		internalError(w, err)
	}
}

// localizeView translates per-record error messages for the admin's language.
func localizeView(lang localized.Lang, v collection.View) collection.View {
	for _, rows := range [][]collection.Row{v.Upcoming, v.History} {
		for i := range rows {
			if rows[i].Error != "" {
				rows[i].Error = i18n.T(lang, rows[i].Error)
			}
		}
	}
	if v.Error != "" {
		v.Error = i18n.T(lang, v.Error)
	}
	return v
}

func localizeResult(lang localized.Lang, res collection.SaveResult) collection.SaveResult {
	if res.Message != "" {
		res.Message = i18n.T(lang, res.Message)
	}
	return res
}

// handleSectionView handles GET /api/admin/{section}
func handleSectionView(w http.ResponseWriter, r *http.Request) {
	s, ok := sectionFor(w, r)
	if !ok {
		return
	}
	lang, _ := i18n.Resolve(r)
	writeJSON(w, http.StatusOK, localizeView(lang, s.View()))
}

// handleSectionNew handles POST /api/admin/{section}: creates a local draft.
func handleSectionNew(w http.ResponseWriter, r *http.Request) {
	s, ok := sectionFor(w, r)
	if !ok {
		return
	}
	id, err := s.New()
	if err != nil {
		lang, _ := i18n.Resolve(r)
		editorError(w, lang, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

type fieldRequest struct {
	Field string `json:"field"`
	Lang  string `json:"lang"`
	Value any    `json:"value"`
}

// handleRecordField handles POST /api/admin/{section}/{id}/field
func handleRecordField(w http.ResponseWriter, r *http.Request) {
	s, ok := sectionFor(w, r)
	if !ok {
		return
	}
	var req fieldRequest
	if err := strictDecode(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	f := collection.SetField{Field: collection.Field(req.Field), Value: req.Value}
	if req.Lang != "" {
		l, err := localized.ParseLang(req.Lang)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.Lang = l
	}
	if err := s.SetField(r.PathValue("id"), f); err != nil {
		lang, _ := i18n.Resolve(r)
		editorError(w, lang, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRecordSave handles POST /api/admin/{section}/{id}/save
func handleRecordSave(w http.ResponseWriter, r *http.Request) {
	s, ok := sectionFor(w, r)
	if !ok {
		return
	}
	lang, _ := i18n.Resolve(r)
	res, err := s.Save(r.Context(), r.PathValue("id"))
	if err != nil {
		editorError(w, lang, err)
		return
	}
	writeJSON(w, http.StatusOK, localizeResult(lang, res))
}

type confirmRequest struct {
	Accept bool `json:"accept"`
}

// handleRecordConfirm handles POST /api/admin/{section}/{id}/confirm
func handleRecordConfirm(w http.ResponseWriter, r *http.Request) {
	s, ok := sectionFor(w, r)
	if !ok {
		return
	}
	var req confirmRequest
	if err := strictDecode(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	lang, _ := i18n.Resolve(r)
	res, err := s.Confirm(r.Context(), r.PathValue("id"), req.Accept)
	if err != nil {
		editorError(w, lang, err)
		return
	}
	writeJSON(w, http.StatusOK, localizeResult(lang, res))
}

type expandRequest struct {
	Expanded bool `json:"expanded"`
}

// handleRecordExpand handles POST /api/admin/{section}/{id}/expand
func handleRecordExpand(w http.ResponseWriter, r *http.Request) {
	s, ok := sectionFor(w, r)
	if !ok {
		return
	}
	var req expandRequest
	if err := strictDecode(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.SetExpanded(r.PathValue("id"), req.Expanded); err != nil {
		lang, _ := i18n.Resolve(r)
		editorError(w, lang, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRecordDiscard handles POST /api/admin/{section}/{id}/discard
func handleRecordDiscard(w http.ResponseWriter, r *http.Request) {
	s, ok := sectionFor(w, r)
	if !ok {
		return
	}
	if err := s.Discard(r.PathValue("id")); err != nil {
		lang, _ := i18n.Resolve(r)
		editorError(w, lang, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRecordDelete handles DELETE /api/admin/{section}/{id}?confirm=true.
// The caller must have asked the user first.
func handleRecordDelete(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		jsonError(w, http.StatusPreconditionRequired, "deletion must be confirmed")
		return
	}
	s, ok := sectionFor(w, r)
	if !ok {
		return
	}
	if err := s.Delete(r.Context(), r.PathValue("id")); err != nil {
		lang, _ := i18n.Resolve(r)
		editorError(w, lang, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
