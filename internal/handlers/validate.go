package handlers

import "unicode/utf8"

// Validation limits for content fields. Both language variants of a
// field share the same limit.
const (
	maxTitleLen   = 300
	maxSlugLen    = 300
	maxExcerptLen = 1_000
	maxBodyLen    = 100_000
	maxNameLen    = 200
	maxDescLen    = 5_000
)

// validatePostForm checks post form inputs and returns the first error
// found. Required-field checks live in the gate; this guards lengths
// before the request reaches it.
func validatePostForm(titleEN, titleAR, slug, excerptEN, excerptAR, bodyEN, bodyAR string) string {
	if utf8.RuneCountInString(titleEN) > maxTitleLen || utf8.RuneCountInString(titleAR) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(slug) > maxSlugLen {
		return "Slug is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(excerptEN) > maxExcerptLen || utf8.RuneCountInString(excerptAR) > maxExcerptLen {
		return "Excerpt is too long (max 1,000 characters)."
	}
	if utf8.RuneCountInString(bodyEN) > maxBodyLen || utf8.RuneCountInString(bodyAR) > maxBodyLen {
		return "Body is too long (max 100,000 characters)."
	}
	return ""
}

// validateLocalityForm checks locality form inputs.
func validateLocalityForm(nameEN, nameAR, slug, descEN, descAR string) string {
	if utf8.RuneCountInString(nameEN) > maxNameLen || utf8.RuneCountInString(nameAR) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(slug) > maxSlugLen {
		return "Slug is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(descEN) > maxDescLen || utf8.RuneCountInString(descAR) > maxDescLen {
		return "Description is too long (max 5,000 characters)."
	}
	return ""
}
