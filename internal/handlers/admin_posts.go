package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"errsite/internal/auth"
	"errsite/internal/authz"
	"errsite/internal/middleware"
	"errsite/internal/models"
	"errsite/internal/render"
	"errsite/internal/slug"
)

// postSection describes how one post type appears in the back office.
// News and field updates share the handlers; only the labels and paths
// differ.
type postSection struct {
	Type     models.PostType
	Section  string
	Label    string
	BasePath string
}

var (
	newsSection = postSection{
		Type:     models.PostTypeNews,
		Section:  "news",
		Label:    "News",
		BasePath: "/admin/news",
	}
	updatesSection = postSection{
		Type:     models.PostTypeFieldUpdate,
		Section:  "updates",
		Label:    "Field Updates",
		BasePath: "/admin/updates",
	}
)

func sectionFor(t models.PostType) postSection {
	if t == models.PostTypeFieldUpdate {
		return updatesSection
	}
	return newsSection
}

// PostsList renders the post management listing for one type. Restricted
// roles see only posts inside their granted localities.
func (a *Admin) PostsList(t models.PostType) http.HandlerFunc {
	sec := sectionFor(t)
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromCtx(r.Context())

		ids, unrestricted, err := a.scopes.LocalityIDs(identity)
		if err != nil {
			slog.Error("resolve scope failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		var posts []models.Post
		switch {
		case unrestricted:
			posts, err = a.posts.ListByType(t)
		case len(ids) > 0:
			posts, err = a.posts.ListByTypeInLocalities(t, ids)
		}
		if err != nil {
			slog.Error("list posts failed", "error", err)
		}

		localities, _ := a.localities.List()
		names := make(map[uuid.UUID]string, len(localities))
		for _, l := range localities {
			names[l.ID] = l.NameEN
		}
		postLocalities := make(map[uuid.UUID]string, len(posts))
		for _, p := range posts {
			if p.LocalityID != nil {
				postLocalities[p.ID] = names[*p.LocalityID]
			}
		}

		a.renderer.Page(w, r, "posts_list", &render.PageData{
			Title:   sec.Label,
			Section: sec.Section,
			Data: map[string]any{
				"BasePath":      sec.BasePath,
				"Posts":         posts,
				"LocalityNames": postLocalities,
				"CanPublish":    auth.CanPublish(identity),
			},
		})
	}
}

// PostNew renders the new post form.
func (a *Admin) PostNew(t models.PostType) http.HandlerFunc {
	sec := sectionFor(t)
	return func(w http.ResponseWriter, r *http.Request) {
		a.renderPostForm(w, r, sec, "New "+sec.Label, sec.BasePath, nil, "")
	}
}

// PostCreate handles the new post form submission.
func (a *Admin) PostCreate(t models.PostType) http.HandlerFunc {
	sec := sectionFor(t)
	return func(w http.ResponseWriter, r *http.Request) {
		in, errMsg := a.postInputFromForm(r, t)
		if errMsg == "" {
			_, err := a.gate.CreatePost(middleware.IdentityFromCtx(r.Context()), in)
			if err == nil {
				if in.Publish {
					a.flushPublicPages(r.Context())
				}
				http.Redirect(w, r, sec.BasePath, http.StatusSeeOther)
				return
			}
			errMsg = formError(err)
			if errMsg == "" {
				writeGateError(w, r, err)
				return
			}
		}
		a.renderPostForm(w, r, sec, "New "+sec.Label, sec.BasePath, nil, errMsg)
	}
}

// PostEdit renders the edit post form. The form is scope-checked too:
// a restricted user cannot open a post outside their grants.
func (a *Admin) PostEdit(t models.PostType) http.HandlerFunc {
	sec := sectionFor(t)
	return func(w http.ResponseWriter, r *http.Request) {
		post, ok := a.loadScopedPost(w, r, t)
		if !ok {
			return
		}
		a.renderPostForm(w, r, sec, "Edit "+sec.Label, sec.BasePath+"/"+post.ID.String(), post, "")
	}
}

// PostUpdate handles the edit post form submission.
func (a *Admin) PostUpdate(t models.PostType) http.HandlerFunc {
	sec := sectionFor(t)
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r)
		if !ok {
			http.NotFound(w, r)
			return
		}
		identity := middleware.IdentityFromCtx(r.Context())

		in, errMsg := a.postInputFromForm(r, t)
		if errMsg == "" {
			updated, err := a.gate.UpdatePost(identity, id, in)
			// The form's publish checkbox can bundle a status transition
			// into the edit; route it through the publish gate. The
			// checkbox is absent for roles without the capability, so an
			// unchecked box from them is not an unpublish request.
			if err == nil && auth.CanPublish(identity) && in.Publish != updated.IsPublished() {
				_, err = a.togglePublish(identity, updated, in.Publish)
			}
			if err == nil {
				a.flushPublicPages(r.Context())
				http.Redirect(w, r, sec.BasePath, http.StatusSeeOther)
				return
			}
			errMsg = formError(err)
			if errMsg == "" {
				writeGateError(w, r, err)
				return
			}
		}

		post, _ := a.posts.FindByID(id)
		a.renderPostForm(w, r, sec, "Edit "+sec.Label, sec.BasePath+"/"+id.String(), post, errMsg)
	}
}

func (a *Admin) togglePublish(identity *auth.Identity, post *models.Post, publish bool) (*models.Post, error) {
	if publish {
		return a.gate.PublishPost(identity, post.ID)
	}
	return a.gate.UnpublishPost(identity, post.ID)
}

// PostPublish handles the publish button on the listing.
func (a *Admin) PostPublish(t models.PostType) http.HandlerFunc {
	sec := sectionFor(t)
	return func(w http.ResponseWriter, r *http.Request) {
		a.setPostStatus(w, r, sec, true)
	}
}

// PostUnpublish handles the unpublish button on the listing.
func (a *Admin) PostUnpublish(t models.PostType) http.HandlerFunc {
	sec := sectionFor(t)
	return func(w http.ResponseWriter, r *http.Request) {
		a.setPostStatus(w, r, sec, false)
	}
}

func (a *Admin) setPostStatus(w http.ResponseWriter, r *http.Request, sec postSection, publish bool) {
	id, ok := urlID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	identity := middleware.IdentityFromCtx(r.Context())

	var err error
	if publish {
		_, err = a.gate.PublishPost(identity, id)
	} else {
		_, err = a.gate.UnpublishPost(identity, id)
	}
	if err != nil {
		writeGateError(w, r, err)
		return
	}

	a.flushPublicPages(r.Context())
	http.Redirect(w, r, sec.BasePath, http.StatusSeeOther)
}

// loadScopedPost loads the post in the URL and verifies both its type
// and the identity's locality scope, writing the error response itself
// when the check fails.
func (a *Admin) loadScopedPost(w http.ResponseWriter, r *http.Request, t models.PostType) (*models.Post, bool) {
	id, ok := urlID(r)
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	post, err := a.posts.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if post == nil || post.Type != t {
		http.NotFound(w, r)
		return nil, false
	}

	identity := middleware.IdentityFromCtx(r.Context())
	ok, err = a.scopes.HasAccess(identity, post.LocalityID)
	if err != nil {
		slog.Error("resolve scope failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if !ok {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}
	return post, true
}

func (a *Admin) renderPostForm(w http.ResponseWriter, r *http.Request, sec postSection, title, action string, post *models.Post, errMsg string) {
	identity := middleware.IdentityFromCtx(r.Context())

	ids, unrestricted, err := a.scopes.LocalityIDs(identity)
	if err != nil {
		slog.Error("resolve scope failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	all, _ := a.localities.List()
	localities := all
	if !unrestricted {
		granted := make(map[uuid.UUID]bool, len(ids))
		for _, id := range ids {
			granted[id] = true
		}
		localities = nil
		for _, l := range all {
			if granted[l.ID] {
				localities = append(localities, l)
			}
		}
	}

	selected := ""
	if post != nil && post.LocalityID != nil {
		selected = post.LocalityID.String()
	}

	a.renderer.Page(w, r, "post_form", &render.PageData{
		Title:   title,
		Section: sec.Section,
		Error:   errMsg,
		Data: map[string]any{
			"Action":           action,
			"Post":             post,
			"Localities":       localities,
			"SelectedLocality": selected,
			"CanSelectAny":     auth.CanSelectAnyLocality(identity),
			"CanPublish":       auth.CanPublish(identity),
		},
	})
}

func (a *Admin) postInputFromForm(r *http.Request, t models.PostType) (authz.PostInput, string) {
	titleEN := strings.TrimSpace(r.FormValue("title_en"))
	titleAR := strings.TrimSpace(r.FormValue("title_ar"))
	slugVal := strings.TrimSpace(r.FormValue("slug"))
	excerptEN := strings.TrimSpace(r.FormValue("excerpt_en"))
	excerptAR := strings.TrimSpace(r.FormValue("excerpt_ar"))
	bodyEN := strings.TrimSpace(r.FormValue("body_en"))
	bodyAR := strings.TrimSpace(r.FormValue("body_ar"))

	if slugVal == "" {
		slugVal = slug.Generate(titleEN)
	}
	if msg := validatePostForm(titleEN, titleAR, slugVal, excerptEN, excerptAR, bodyEN, bodyAR); msg != "" {
		return authz.PostInput{}, msg
	}

	in := authz.PostInput{
		Type:      t,
		Slug:      slugVal,
		TitleEN:   titleEN,
		TitleAR:   titleAR,
		ExcerptEN: excerptEN,
		ExcerptAR: excerptAR,
		BodyEN:    bodyEN,
		BodyAR:    bodyAR,
		Publish:   r.FormValue("publish") == "1",
	}

	if raw := r.FormValue("locality_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return authz.PostInput{}, "Invalid locality."
		}
		in.LocalityID = &id
	}
	return in, ""
}
