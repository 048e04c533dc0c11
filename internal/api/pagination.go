package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/store"
)

// HeaderTotalCount carries the total number of entities behind a list response.
const HeaderTotalCount = "X-Total-Count"

// parsePageRequest reads page, size and repeated sort=field,dir parameters.
func parsePageRequest(r *http.Request) (store.PageRequest, error) {
	q := r.URL.Query()

	page, err := intParam(q, "page", 0)
	if err != nil {
		return store.PageRequest{}, err
	}
	size, err := intParam(q, "size", store.DefaultPageSize)
	if err != nil {
		return store.PageRequest{}, err
	}

	sorts := make([]store.SortOrder, 0, len(q["sort"]))
	for _, raw := range q["sort"] {
		s, err := store.ParseSort(raw)
		if err != nil {
			return store.PageRequest{}, err
		}
		sorts = append(sorts, s)
	}
	return store.NewPageRequest(page, size, sorts...), nil
}

func intParam(q url.Values, name string, fallback int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", domain.ErrValidation)
	}
	return n, nil
}

// writeTotalCount sets the X-Total-Count header.
func writeTotalCount(w http.ResponseWriter, total int64) {
	w.Header().Set(HeaderTotalCount, strconv.FormatInt(total, 10))
}

// writePaginationHeaders sets X-Total-Count and a Link header with next,
// prev, last and first relations for the requested page.
func writePaginationHeaders(w http.ResponseWriter, r *http.Request, page store.PageRequest, total int64) {
	writeTotalCount(w, total)

	lastPage := 0
	if total > 0 {
		lastPage = int((total - 1) / int64(page.Size))
	}

	links := make([]string, 0, 4)
	if page.Page < lastPage {
		links = append(links, pageLink(r, page.Page+1, page.Size, "next"))
	}
	if page.Page > 0 {
		links = append(links, pageLink(r, page.Page-1, page.Size, "prev"))
	}
	links = append(links,
		pageLink(r, lastPage, page.Size, "last"),
		pageLink(r, 0, page.Size, "first"))
	w.Header().Set("Link", strings.Join(links, ","))
}

func pageLink(r *http.Request, page, size int, rel string) string {
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	u := url.URL{Path: r.URL.Path, RawQuery: q.Encode()}
	return fmt.Sprintf(`<%s>; rel="%s"`, u.String(), rel)
}
