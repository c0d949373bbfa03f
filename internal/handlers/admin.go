package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"errsite/internal/auth"
	"errsite/internal/authz"
	"errsite/internal/cache"
	"errsite/internal/middleware"
	"errsite/internal/models"
	"errsite/internal/render"
	"errsite/internal/scope"
	"errsite/internal/slug"
	"errsite/internal/store"
)

// auditListLimit caps the audit log page to the most recent entries.
const auditListLimit = 200

// Admin groups all back-office HTTP handlers and their dependencies.
// Mutations go through the gate; reads go to the stores directly with
// scope applied where listings are locality-restricted.
type Admin struct {
	renderer   *render.Renderer
	gate       *authz.Gate
	users      *store.UserStore
	localities *store.LocalityStore
	posts      *store.PostStore
	grants     *store.GrantStore
	audit      *store.AuditStore
	site       *store.SiteStore
	scopes     *scope.Resolver
	pageCache  *cache.PageCache
}

// NewAdmin creates a new Admin handler group with the given dependencies.
// pageCache may be nil when Valkey is not configured.
func NewAdmin(renderer *render.Renderer, gate *authz.Gate, users *store.UserStore, localities *store.LocalityStore, posts *store.PostStore, grants *store.GrantStore, audit *store.AuditStore, site *store.SiteStore, scopes *scope.Resolver, pageCache *cache.PageCache) *Admin {
	return &Admin{
		renderer:   renderer,
		gate:       gate,
		users:      users,
		localities: localities,
		posts:      posts,
		grants:     grants,
		audit:      audit,
		site:       site,
		scopes:     scopes,
		pageCache:  pageCache,
	}
}

// flushPublicPages invalidates the cached public site after a mutation
// that changes what visitors see.
func (a *Admin) flushPublicPages(ctx context.Context) {
	if a.pageCache != nil {
		a.pageCache.InvalidateAll(ctx)
	}
}

// Dashboard renders the admin dashboard page with content counts.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	newsCount, _ := a.posts.CountByType(models.PostTypeNews)
	updateCount, _ := a.posts.CountByType(models.PostTypeFieldUpdate)
	localityCount, _ := a.localities.Count()
	users, _ := a.users.List()

	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"NewsCount":     newsCount,
			"UpdateCount":   updateCount,
			"LocalityCount": localityCount,
			"UserCount":     len(users),
		},
	})
}

// --- Localities ---

// LocalitiesList renders the locality management page.
func (a *Admin) LocalitiesList(w http.ResponseWriter, r *http.Request) {
	localities, err := a.localities.List()
	if err != nil {
		slog.Error("list localities failed", "error", err)
	}

	a.renderer.Page(w, r, "localities_list", &render.PageData{
		Title:   "Localities",
		Section: "localities",
		Data: map[string]any{
			"Localities": localities,
			"CanManage":  auth.CanManageLocalities(middleware.IdentityFromCtx(r.Context())),
		},
	})
}

// LocalityNew renders the new locality form.
func (a *Admin) LocalityNew(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "locality_form", &render.PageData{
		Title:   "New Locality",
		Section: "localities",
		Data:    map[string]any{"Action": "/admin/localities"},
	})
}

// LocalityCreate handles the new locality form submission.
func (a *Admin) LocalityCreate(w http.ResponseWriter, r *http.Request) {
	in, errMsg := localityInputFromForm(r)
	if errMsg == "" {
		_, err := a.gate.CreateLocality(middleware.IdentityFromCtx(r.Context()), in)
		if err == nil {
			a.flushPublicPages(r.Context())
			http.Redirect(w, r, "/admin/localities", http.StatusSeeOther)
			return
		}
		errMsg = formError(err)
		if errMsg == "" {
			writeGateError(w, r, err)
			return
		}
	}

	a.renderer.Page(w, r, "locality_form", &render.PageData{
		Title:   "New Locality",
		Section: "localities",
		Error:   errMsg,
		Data:    map[string]any{"Action": "/admin/localities"},
	})
}

// LocalityEdit renders the edit locality form.
func (a *Admin) LocalityEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	locality, err := a.localities.FindByID(id)
	if err != nil {
		slog.Error("find locality failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if locality == nil {
		http.NotFound(w, r)
		return
	}

	a.renderer.Page(w, r, "locality_form", &render.PageData{
		Title:   "Edit Locality",
		Section: "localities",
		Data: map[string]any{
			"Action":   "/admin/localities/" + id.String(),
			"Locality": locality,
		},
	})
}

// LocalityUpdate handles the edit locality form submission.
func (a *Admin) LocalityUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	in, errMsg := localityInputFromForm(r)
	if errMsg == "" {
		_, err := a.gate.UpdateLocality(middleware.IdentityFromCtx(r.Context()), id, in)
		if err == nil {
			a.flushPublicPages(r.Context())
			http.Redirect(w, r, "/admin/localities", http.StatusSeeOther)
			return
		}
		errMsg = formError(err)
		if errMsg == "" {
			writeGateError(w, r, err)
			return
		}
	}

	locality, _ := a.localities.FindByID(id)
	a.renderer.Page(w, r, "locality_form", &render.PageData{
		Title:   "Edit Locality",
		Section: "localities",
		Error:   errMsg,
		Data: map[string]any{
			"Action":   "/admin/localities/" + id.String(),
			"Locality": locality,
		},
	})
}

func localityInputFromForm(r *http.Request) (authz.LocalityInput, string) {
	nameEN := strings.TrimSpace(r.FormValue("name_en"))
	nameAR := strings.TrimSpace(r.FormValue("name_ar"))
	slugVal := strings.TrimSpace(r.FormValue("slug"))
	descEN := strings.TrimSpace(r.FormValue("description_en"))
	descAR := strings.TrimSpace(r.FormValue("description_ar"))

	if slugVal == "" {
		slugVal = slug.Generate(nameEN)
	}
	if msg := validateLocalityForm(nameEN, nameAR, slugVal, descEN, descAR); msg != "" {
		return authz.LocalityInput{}, msg
	}

	in := authz.LocalityInput{Slug: slugVal, NameEN: nameEN, NameAR: nameAR}
	if descEN != "" {
		in.DescriptionEN = &descEN
	}
	if descAR != "" {
		in.DescriptionAR = &descAR
	}
	return in, ""
}

// --- Users ---

var assignableRoles = []models.Role{
	models.RoleSuperAdmin,
	models.RoleStateAdmin,
	models.RoleLocalityAdmin,
	models.RoleEditor,
}

// UsersList renders the user management page.
func (a *Admin) UsersList(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.List()
	if err != nil {
		slog.Error("list users failed", "error", err)
	}

	a.renderer.Page(w, r, "users_list", &render.PageData{
		Title:   "Users",
		Section: "users",
		Data:    map[string]any{"Users": users},
	})
}

// UserNew renders the new user form.
func (a *Admin) UserNew(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "user_form", &render.PageData{
		Title:   "New User",
		Section: "users",
		Data:    map[string]any{"Roles": assignableRoles},
	})
}

// UserCreate handles the new user form submission.
func (a *Admin) UserCreate(w http.ResponseWriter, r *http.Request) {
	in := authz.UserInput{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Role:     models.Role(r.FormValue("role")),
	}

	created, err := a.gate.CreateUser(middleware.IdentityFromCtx(r.Context()), in)
	if err != nil {
		if msg := formError(err); msg != "" {
			a.renderer.Page(w, r, "user_form", &render.PageData{
				Title:   "New User",
				Section: "users",
				Error:   msg,
				Data:    map[string]any{"Roles": assignableRoles},
			})
			return
		}
		writeGateError(w, r, err)
		return
	}

	http.Redirect(w, r, "/admin/users/"+created.ID.String(), http.StatusSeeOther)
}

// UserDetail renders one user with their role and locality grants.
func (a *Admin) UserDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	user, err := a.users.FindByID(id)
	if err != nil {
		slog.Error("find user failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.NotFound(w, r)
		return
	}

	grantIDs, err := a.grants.LocalityIDsForUser(id)
	if err != nil {
		slog.Error("list grants failed", "error", err)
	}
	granted := make(map[uuid.UUID]bool, len(grantIDs))
	for _, gid := range grantIDs {
		granted[gid] = true
	}

	localities, _ := a.localities.List()
	var held, available []models.Locality
	for _, l := range localities {
		if granted[l.ID] {
			held = append(held, l)
		} else {
			available = append(available, l)
		}
	}

	a.renderer.Page(w, r, "user_detail", &render.PageData{
		Title:   user.Email,
		Section: "users",
		Data: map[string]any{
			"User":      user,
			"Roles":     assignableRoles,
			"Grants":    held,
			"Available": available,
		},
	})
}

// UserSetRole handles the role change form submission.
func (a *Admin) UserSetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	err := a.gate.SetUserRole(middleware.IdentityFromCtx(r.Context()), id, models.Role(r.FormValue("role")))
	if err != nil {
		writeGateError(w, r, err)
		return
	}
	http.Redirect(w, r, "/admin/users/"+id.String(), http.StatusSeeOther)
}

// UserActivate re-enables a deactivated user.
func (a *Admin) UserActivate(w http.ResponseWriter, r *http.Request) {
	a.setUserActive(w, r, true)
}

// UserDeactivate disables a user. Their sessions fail resolution from
// the next request on, token expiry notwithstanding.
func (a *Admin) UserDeactivate(w http.ResponseWriter, r *http.Request) {
	a.setUserActive(w, r, false)
}

func (a *Admin) setUserActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := urlID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	identity := middleware.IdentityFromCtx(r.Context())
	if !active && identity != nil && identity.ID == id {
		http.Error(w, "You cannot deactivate your own account.", http.StatusBadRequest)
		return
	}
	if err := a.gate.SetUserActive(identity, id, active); err != nil {
		writeGateError(w, r, err)
		return
	}
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// UserGrantAssign handles the grant form submission on the user page.
func (a *Admin) UserGrantAssign(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	localityID, err := uuid.Parse(r.FormValue("locality_id"))
	if err != nil {
		http.Error(w, "Invalid locality.", http.StatusBadRequest)
		return
	}
	if err := a.gate.AssignLocality(middleware.IdentityFromCtx(r.Context()), id, localityID); err != nil {
		writeGateError(w, r, err)
		return
	}
	http.Redirect(w, r, "/admin/users/"+id.String(), http.StatusSeeOther)
}

// UserGrantRemove revokes a locality grant. The revocation is effective
// on the user's next request.
func (a *Admin) UserGrantRemove(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	localityID, err := uuid.Parse(chi.URLParam(r, "localityID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := a.gate.RemoveLocality(middleware.IdentityFromCtx(r.Context()), id, localityID); err != nil {
		writeGateError(w, r, err)
		return
	}
	http.Redirect(w, r, "/admin/users/"+id.String(), http.StatusSeeOther)
}

// --- Audit log ---

// AuditList renders the most recent audit entries.
func (a *Admin) AuditList(w http.ResponseWriter, r *http.Request) {
	entries, err := a.audit.List(auditListLimit)
	if err != nil {
		slog.Error("list audit entries failed", "error", err)
	}

	users, _ := a.users.List()
	emails := make(map[string]string, len(users))
	for _, u := range users {
		emails[u.ID.String()] = u.Email
	}

	a.renderer.Page(w, r, "audit_list", &render.PageData{
		Title:   "Audit Log",
		Section: "audit",
		Data: map[string]any{
			"Entries":    entries,
			"UserEmails": emails,
		},
	})
}

// --- Site settings ---

// SettingsForm renders the site settings form.
func (a *Admin) SettingsForm(w http.ResponseWriter, r *http.Request) {
	a.renderSettings(w, r, "")
}

func (a *Admin) renderSettings(w http.ResponseWriter, r *http.Request, errMsg string) {
	settings, err := a.site.Settings()
	if err != nil {
		slog.Error("load site settings failed", "error", err)
	}

	data := map[string]any{"Settings": settings}
	if settings != nil {
		data["StatBeneficiaries"] = settings.Stats["beneficiaries"]
		data["StatInterventions"] = settings.Stats["interventions"]
		data["StatLocalities"] = settings.Stats["localities_covered"]
		data["StatVolunteers"] = settings.Stats["volunteers"]
	}

	a.renderer.Page(w, r, "settings_form", &render.PageData{
		Title:   "Site Settings",
		Section: "settings",
		Error:   errMsg,
		Data:    data,
	})
}

// SettingsUpdate handles the site settings form submission.
func (a *Admin) SettingsUpdate(w http.ResponseWriter, r *http.Request) {
	set := &models.SiteSettings{
		ID:         "default",
		SiteNameEN: r.FormValue("site_name_en"),
		SiteNameAR: r.FormValue("site_name_ar"),
		HeroTextEN: r.FormValue("hero_text_en"),
		HeroTextAR: r.FormValue("hero_text_ar"),
		Stats: map[string]int{
			"beneficiaries":      formInt(r, "stat_beneficiaries"),
			"interventions":      formInt(r, "stat_interventions"),
			"localities_covered": formInt(r, "stat_localities"),
			"volunteers":         formInt(r, "stat_volunteers"),
		},
	}

	err := a.gate.UpdateSettings(middleware.IdentityFromCtx(r.Context()), set)
	if err != nil {
		if msg := formError(err); msg != "" {
			a.renderSettings(w, r, msg)
			return
		}
		writeGateError(w, r, err)
		return
	}

	a.flushPublicPages(r.Context())
	http.Redirect(w, r, "/admin/settings", http.StatusSeeOther)
}

// formInt parses a non-negative integer form field, defaulting to zero.
func formInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.FormValue(name)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
