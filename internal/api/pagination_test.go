package api

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/schalkje/DiagramDesigner/internal/service"
)

func contextWithQuery(params map[string]string) echo.Context {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	e := echo.New()
	req := httptest.NewRequest("GET", "/?"+q.Encode(), nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name        string
		queryParams map[string]string
		want        service.PageRequest
		wantErr     bool
	}{
		{
			name:        "no parameters",
			queryParams: map[string]string{},
			want:        service.PageRequest{},
		},
		{
			name:        "skip and limit",
			queryParams: map[string]string{"skip": "20", "limit": "10"},
			want:        service.PageRequest{Offset: 20, Limit: 10},
		},
		{
			name:        "offset is an alias of skip",
			queryParams: map[string]string{"offset": "25", "limit": "50"},
			want:        service.PageRequest{Offset: 25, Limit: 50},
		},
		{
			name:        "page and pageSize",
			queryParams: map[string]string{"page": "3", "pageSize": "20"},
			want:        service.PageRequest{Offset: 40, Limit: 20},
		},
		{
			name:        "page without size uses default size",
			queryParams: map[string]string{"page": "2"},
			want:        service.PageRequest{Offset: service.DefaultPageSize, Limit: service.DefaultPageSize},
		},
		{
			name:        "pageSize is capped",
			queryParams: map[string]string{"pageSize": "5000"},
			want:        service.PageRequest{Offset: 0, Limit: service.MaxPageSize},
		},
		{
			name:        "page wins over skip",
			queryParams: map[string]string{"page": "2", "pageSize": "10", "skip": "99"},
			want:        service.PageRequest{Offset: 10, Limit: 10},
		},
		{
			name:        "negative limit",
			queryParams: map[string]string{"limit": "-10"},
			wantErr:     true,
		},
		{
			name:        "non-numeric page",
			queryParams: map[string]string{"page": "abc"},
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePagination(contextWithQuery(tt.queryParams))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parsePagination() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePagination() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parsePagination() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestQueryID(t *testing.T) {
	c := contextWithQuery(map[string]string{"domainId": "7", "bad": "0"})

	id, err := queryID(c, "domainId")
	if err != nil || id == nil || *id != 7 {
		t.Errorf("queryID(domainId) = %v, %v; want 7", id, err)
	}

	id, err = queryID(c, "missing")
	if err != nil || id != nil {
		t.Errorf("queryID(missing) = %v, %v; want nil, nil", id, err)
	}

	if _, err := queryID(c, "bad"); err == nil {
		t.Error("queryID(bad) error = nil, want error")
	}
}
