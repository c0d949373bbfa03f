package handlers

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"errsite/internal/cache"
	"errsite/internal/i18n"
	"errsite/internal/models"
	"errsite/internal/render"
	"errsite/internal/store"
)

const (
	homeListLimit   = 6
	publicListLimit = 50
)

// Public groups handlers for the public-facing bilingual site. Every
// route is prefixed with a language code. Rendered pages go through the
// Valkey page cache when it is configured.
type Public struct {
	renderer   *render.Renderer
	posts      *store.PostStore
	localities *store.LocalityStore
	site       *store.SiteStore
	pageCache  *cache.PageCache
}

// NewPublic creates a new Public handler group. pageCache may be nil
// when Valkey is not configured.
func NewPublic(renderer *render.Renderer, posts *store.PostStore, localities *store.LocalityStore, site *store.SiteStore, pageCache *cache.PageCache) *Public {
	return &Public{
		renderer:   renderer,
		posts:      posts,
		localities: localities,
		site:       site,
		pageCache:  pageCache,
	}
}

// postView is a post flattened to one language for templates.
type postView struct {
	Slug      string
	Title     string
	Excerpt   string
	Locality  string
	Published string
}

// statView is one headline number with its localized label.
type statView struct {
	Label string
	Value int
}

// RedirectRoot sends the bare domain to the English homepage.
func (p *Public) RedirectRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/en", http.StatusSeeOther)
}

// lang reads the language route parameter. The router constrains it to
// the supported codes.
func lang(r *http.Request) i18n.Lang {
	l, _ := i18n.Parse(chi.URLParam(r, "lang"))
	return l
}

// pageData builds the fields every public template needs.
func (p *Public) pageData(r *http.Request, l i18n.Lang, title string) map[string]any {
	siteName := "Emergency Response Rooms"
	if settings, err := p.site.Settings(); err == nil && settings != nil {
		siteName = l.Pick(settings.SiteNameEN, settings.SiteNameAR)
	}

	other := i18n.Arabic
	if l == i18n.Arabic {
		other = i18n.English
	}
	altPath := "/" + string(other) + strings.TrimPrefix(r.URL.Path, "/"+string(l))

	return map[string]any{
		"Lang":     l,
		"Dir":      l.Dir(),
		"RTL":      l == i18n.Arabic,
		"SiteName": siteName,
		"Title":    title,
		"AltPath":  altPath,
	}
}

// serve renders a page, caching the result under the request path. On a
// cache hit nothing is rebuilt.
func (p *Public) serve(w http.ResponseWriter, r *http.Request, l i18n.Lang, name string, build func() (map[string]any, error)) {
	ctx := r.Context()
	key := cache.Key(string(l), r.URL.Path)

	if html, ok := p.cacheGet(ctx, key); ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(html)
		return
	}

	data, err := build()
	if err != nil {
		slog.Error("build public page failed", "page", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	html, err := p.renderer.Public(name, data)
	if err != nil {
		slog.Error("render public page failed", "page", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.cacheSet(ctx, key, html)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

func (p *Public) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if p.pageCache == nil {
		return nil, false
	}
	return p.pageCache.Get(ctx, key)
}

func (p *Public) cacheSet(ctx context.Context, key string, html []byte) {
	if p.pageCache != nil {
		p.pageCache.Set(ctx, key, html)
	}
}

// Home renders the homepage: hero, headline stats, and the latest
// published content of both types.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	l := lang(r)
	p.serve(w, r, l, "home", func() (map[string]any, error) {
		data := p.pageData(r, l, l.Pick("Home", "الرئيسية"))

		heroText := ""
		var stats []statView
		if settings, err := p.site.Settings(); err == nil && settings != nil {
			heroText = l.Pick(settings.HeroTextEN, settings.HeroTextAR)
			stats = statViews(settings.Stats, l)
		}
		data["HeroTitle"] = data["SiteName"]
		data["HeroText"] = heroText
		data["Stats"] = stats

		names, err := p.localityNames()
		if err != nil {
			return nil, err
		}
		news, err := p.posts.ListPublishedByType(models.PostTypeNews, homeListLimit)
		if err != nil {
			return nil, err
		}
		updates, err := p.posts.ListPublishedByType(models.PostTypeFieldUpdate, homeListLimit)
		if err != nil {
			return nil, err
		}
		data["News"] = postViews(news, l, names)
		data["Updates"] = postViews(updates, l, names)
		return data, nil
	})
}

// PostsList renders the published listing for one post type.
func (p *Public) PostsList(t models.PostType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := lang(r)
		p.serve(w, r, l, "posts", func() (map[string]any, error) {
			heading := l.Pick("News", "الأخبار")
			empty := l.Pick("No news yet.", "لا توجد أخبار بعد.")
			base := "/" + string(l) + "/news"
			if t == models.PostTypeFieldUpdate {
				heading = l.Pick("Field Updates", "تحديثات ميدانية")
				empty = l.Pick("No updates yet.", "لا توجد تحديثات بعد.")
				base = "/" + string(l) + "/updates"
			}

			names, err := p.localityNames()
			if err != nil {
				return nil, err
			}
			posts, err := p.posts.ListPublishedByType(t, publicListLimit)
			if err != nil {
				return nil, err
			}

			data := p.pageData(r, l, heading)
			data["Heading"] = heading
			data["Empty"] = empty
			data["BasePath"] = base
			data["Posts"] = postViews(posts, l, names)
			return data, nil
		})
	}
}

// PostDetail renders one published post by slug. Drafts and slugs of
// the other post type 404.
func (p *Public) PostDetail(t models.PostType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := lang(r)
		slugParam := chi.URLParam(r, "slug")
		p.serve(w, r, l, "post", func() (map[string]any, error) {
			post, err := p.posts.FindPublishedBySlug(slugParam)
			if err != nil {
				return nil, err
			}
			if post == nil || post.Type != t {
				return nil, nil
			}

			localityName := ""
			if post.LocalityID != nil {
				if loc, err := p.localities.FindByID(*post.LocalityID); err == nil && loc != nil {
					localityName = l.Pick(loc.NameEN, loc.NameAR)
				}
			}

			data := p.pageData(r, l, l.Pick(post.TitleEN, post.TitleAR))
			data["PostTitle"] = l.Pick(post.TitleEN, post.TitleAR)
			data["Body"] = l.Pick(post.BodyEN, post.BodyAR)
			data["Locality"] = localityName
			if post.PublishedAt != nil {
				data["Published"] = post.PublishedAt.Format("2 January 2006")
			}
			return data, nil
		})
	}
}

// Localities renders the locality index.
func (p *Public) Localities(w http.ResponseWriter, r *http.Request) {
	l := lang(r)
	p.serve(w, r, l, "localities", func() (map[string]any, error) {
		localities, err := p.localities.List()
		if err != nil {
			return nil, err
		}

		type localityView struct {
			Slug        string
			Name        string
			Description string
		}
		views := make([]localityView, 0, len(localities))
		for _, loc := range localities {
			v := localityView{
				Slug: loc.Slug,
				Name: l.Pick(loc.NameEN, loc.NameAR),
			}
			if loc.DescriptionEN != nil || loc.DescriptionAR != nil {
				v.Description = l.Pick(strDeref(loc.DescriptionEN), strDeref(loc.DescriptionAR))
			}
			views = append(views, v)
		}

		data := p.pageData(r, l, l.Pick("Localities", "المحليات"))
		data["Localities"] = views
		return data, nil
	})
}

// Locality renders one locality page with its published updates.
func (p *Public) Locality(w http.ResponseWriter, r *http.Request) {
	l := lang(r)
	slugParam := chi.URLParam(r, "slug")
	p.serve(w, r, l, "locality", func() (map[string]any, error) {
		loc, err := p.localities.FindBySlug(slugParam)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, nil
		}

		posts, err := p.posts.ListPublishedByLocality(loc.ID)
		if err != nil {
			return nil, err
		}

		name := l.Pick(loc.NameEN, loc.NameAR)
		data := p.pageData(r, l, name)
		data["LocalityName"] = name
		data["Description"] = l.Pick(strDeref(loc.DescriptionEN), strDeref(loc.DescriptionAR))
		data["Posts"] = postViews(posts, l, nil)
		return data, nil
	})
}

// Donate renders the donation methods page. Mobile money wallets get a
// QR code of their details, inlined as a data URI.
func (p *Public) Donate(w http.ResponseWriter, r *http.Request) {
	l := lang(r)
	p.serve(w, r, l, "donate", func() (map[string]any, error) {
		methods, err := p.site.DonationMethods()
		if err != nil {
			return nil, err
		}

		type methodView struct {
			Name    string
			Details string
			QR      string
		}
		views := make([]methodView, 0, len(methods))
		for _, m := range methods {
			v := methodView{
				Name:    l.Pick(m.TitleEN, m.TitleAR),
				Details: l.Pick(m.DetailsEN, m.DetailsAR),
			}
			if m.Type == models.DonationMethodMobileMoney {
				if png, err := qrcode.Encode(m.DetailsEN, qrcode.Medium, 256); err == nil {
					v.QR = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
				} else {
					slog.Warn("donation qr encode failed", "method", m.TitleEN, "error", err)
				}
			}
			views = append(views, v)
		}

		data := p.pageData(r, l, l.Pick("Donate", "تبرع"))
		data["Methods"] = views
		return data, nil
	})
}

// About renders the static about page.
func (p *Public) About(w http.ResponseWriter, r *http.Request) {
	l := lang(r)
	p.serve(w, r, l, "about", func() (map[string]any, error) {
		return p.pageData(r, l, l.Pick("About", "من نحن")), nil
	})
}

// localityNames loads all localities keyed by id for post listings.
func (p *Public) localityNames() (map[string]models.Locality, error) {
	localities, err := p.localities.List()
	if err != nil {
		return nil, err
	}
	names := make(map[string]models.Locality, len(localities))
	for _, l := range localities {
		names[l.ID.String()] = l
	}
	return names, nil
}

func postViews(posts []models.Post, l i18n.Lang, localities map[string]models.Locality) []postView {
	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		v := postView{
			Slug:    p.Slug,
			Title:   l.Pick(p.TitleEN, p.TitleAR),
			Excerpt: l.Pick(p.ExcerptEN, p.ExcerptAR),
		}
		if p.PublishedAt != nil {
			v.Published = p.PublishedAt.Format("2 January 2006")
		}
		if p.LocalityID != nil && localities != nil {
			if loc, ok := localities[p.LocalityID.String()]; ok {
				v.Locality = l.Pick(loc.NameEN, loc.NameAR)
			}
		}
		views = append(views, v)
	}
	return views
}

// statViews orders the headline statistics with localized labels,
// dropping zero values so an unconfigured site shows no empty boxes.
func statViews(stats map[string]int, l i18n.Lang) []statView {
	labels := []struct {
		key string
		en  string
		ar  string
	}{
		{"beneficiaries", "Beneficiaries", "مستفيد"},
		{"interventions", "Interventions", "تدخل"},
		{"localities_covered", "Localities covered", "محلية مغطاة"},
		{"volunteers", "Volunteers", "متطوع"},
	}

	var views []statView
	for _, lb := range labels {
		if v := stats[lb.key]; v > 0 {
			views = append(views, statView{Label: l.Pick(lb.en, lb.ar), Value: v})
		}
	}
	return views
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
