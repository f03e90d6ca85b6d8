package pagination_test

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/rmoura-dev/provisor/pkg/pagination"
	"github.com/rmoura-dev/provisor/pkg/query"
)

func testConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		var cfg pagination.Config
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("Finalize error: %v", err)
		}
		if cfg.DefaultPageSize != 20 {
			t.Errorf("DefaultPageSize = %d, want 20", cfg.DefaultPageSize)
		}
		if cfg.MaxPageSize != 100 {
			t.Errorf("MaxPageSize = %d, want 100", cfg.MaxPageSize)
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("TEST_DEFAULT_PAGE_SIZE", "10")
		t.Setenv("TEST_MAX_PAGE_SIZE", "50")

		var cfg pagination.Config
		env := &pagination.ConfigEnv{
			DefaultPageSize: "TEST_DEFAULT_PAGE_SIZE",
			MaxPageSize:     "TEST_MAX_PAGE_SIZE",
		}
		if err := cfg.Finalize(env); err != nil {
			t.Fatalf("Finalize error: %v", err)
		}
		if cfg.DefaultPageSize != 10 {
			t.Errorf("DefaultPageSize = %d, want 10", cfg.DefaultPageSize)
		}
		if cfg.MaxPageSize != 50 {
			t.Errorf("MaxPageSize = %d, want 50", cfg.MaxPageSize)
		}
	})

	t.Run("max below default fails", func(t *testing.T) {
		cfg := pagination.Config{DefaultPageSize: 50, MaxPageSize: 10}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("Finalize returned nil, want validation error")
		}
	})
}

func TestConfigMerge(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
	cfg.Merge(&pagination.Config{DefaultPageSize: 5})

	if cfg.DefaultPageSize != 5 {
		t.Errorf("DefaultPageSize = %d, want 5", cfg.DefaultPageSize)
	}
	if cfg.MaxPageSize != 100 {
		t.Errorf("MaxPageSize = %d, want 100 (zero overlay ignored)", cfg.MaxPageSize)
	}
}

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{name: "valid request unchanged", page: 2, pageSize: 50, wantPage: 2, wantPageSize: 50},
		{name: "zero page clamped to one", page: 0, pageSize: 50, wantPage: 1, wantPageSize: 50},
		{name: "negative page clamped to one", page: -3, pageSize: 50, wantPage: 1, wantPageSize: 50},
		{name: "zero page size gets default", page: 1, pageSize: 0, wantPage: 1, wantPageSize: 20},
		{name: "oversized page size clamped to max", page: 1, pageSize: 500, wantPage: 1, wantPageSize: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := pagination.PageRequest{Page: tt.page, PageSize: tt.pageSize}
			req.Normalize(testConfig())

			if req.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", req.Page, tt.wantPage)
			}
			if req.PageSize != tt.wantPageSize {
				t.Errorf("PageSize = %d, want %d", req.PageSize, tt.wantPageSize)
			}
		})
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	t.Run("full query", func(t *testing.T) {
		values := url.Values{}
		values.Set("page", "3")
		values.Set("page_size", "25")
		values.Set("search", "widget")
		values.Set("sort", "sku,-created_at")

		req := pagination.PageRequestFromQuery(values, testConfig())

		if req.Page != 3 {
			t.Errorf("Page = %d, want 3", req.Page)
		}
		if req.PageSize != 25 {
			t.Errorf("PageSize = %d, want 25", req.PageSize)
		}
		if req.Search == nil || *req.Search != "widget" {
			t.Errorf("Search = %v, want widget", req.Search)
		}
		want := []query.SortField{
			{Field: "sku", Descending: false},
			{Field: "created_at", Descending: true},
		}
		if len(req.Sort) != len(want) {
			t.Fatalf("Sort length = %d, want %d", len(req.Sort), len(want))
		}
		for i := range want {
			if req.Sort[i] != want[i] {
				t.Errorf("Sort[%d] = %v, want %v", i, req.Sort[i], want[i])
			}
		}
	})

	t.Run("empty query normalized", func(t *testing.T) {
		req := pagination.PageRequestFromQuery(url.Values{}, testConfig())

		if req.Page != 1 {
			t.Errorf("Page = %d, want 1", req.Page)
		}
		if req.PageSize != 20 {
			t.Errorf("PageSize = %d, want 20", req.PageSize)
		}
		if req.Search != nil {
			t.Errorf("Search = %v, want nil", req.Search)
		}
		if req.Sort != nil {
			t.Errorf("Sort = %v, want nil", req.Sort)
		}
	})
}

func TestSortFieldsUnmarshalJSON(t *testing.T) {
	t.Run("string format", func(t *testing.T) {
		var s pagination.SortFields
		if err := json.Unmarshal([]byte(`"sku,-created_at"`), &s); err != nil {
			t.Fatalf("Unmarshal error: %v", err)
		}
		if len(s) != 2 {
			t.Fatalf("length = %d, want 2", len(s))
		}
		if s[0].Field != "sku" || s[0].Descending {
			t.Errorf("s[0] = %v, want {sku false}", s[0])
		}
		if s[1].Field != "created_at" || !s[1].Descending {
			t.Errorf("s[1] = %v, want {created_at true}", s[1])
		}
	})

	t.Run("array format", func(t *testing.T) {
		var s pagination.SortFields
		input := `[{"Field":"sku","Descending":false},{"Field":"created_at","Descending":true}]`
		if err := json.Unmarshal([]byte(input), &s); err != nil {
			t.Fatalf("Unmarshal error: %v", err)
		}
		if len(s) != 2 {
			t.Fatalf("length = %d, want 2", len(s))
		}
		if s[1].Field != "created_at" || !s[1].Descending {
			t.Errorf("s[1] = %v, want {created_at true}", s[1])
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		var s pagination.SortFields
		if err := json.Unmarshal([]byte(`42`), &s); err == nil {
			t.Error("Unmarshal returned nil, want error")
		}
	})
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name           string
		dataLen        int
		total          int
		page           int
		pageSize       int
		wantTotalPages int
	}{
		{name: "even division", dataLen: 10, total: 100, page: 1, pageSize: 10, wantTotalPages: 10},
		{name: "remainder adds page", dataLen: 10, total: 101, page: 1, pageSize: 10, wantTotalPages: 11},
		{name: "empty result has one page", dataLen: 0, total: 0, page: 1, pageSize: 10, wantTotalPages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]int, tt.dataLen)
			result := pagination.NewPageResult(data, tt.total, tt.page, tt.pageSize)

			if result.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d", result.TotalPages, tt.wantTotalPages)
			}
			if result.Total != tt.total {
				t.Errorf("Total = %d, want %d", result.Total, tt.total)
			}
		})
	}

	t.Run("nil data becomes empty slice", func(t *testing.T) {
		result := pagination.NewPageResult[int](nil, 0, 1, 10)
		if result.Data == nil {
			t.Error("Data = nil, want empty slice")
		}
		if len(result.Data) != 0 {
			t.Errorf("Data length = %d, want 0", len(result.Data))
		}
	})
}
