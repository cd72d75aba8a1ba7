package mid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ardanlabs/powchain/business/web/mid"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestCors(t *testing.T) {
	tt := []struct {
		name    string
		origins []string
		origin  string
		exp     string
	}{
		{"all", []string{"*"}, "http://viewer.local", "*"},
		{"listed", []string{"http://viewer.local"}, "http://viewer.local", "http://viewer.local"},
		{"unlisted", []string{"http://viewer.local"}, "http://evil.local", ""},
	}

	next := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return nil
	}

	t.Log("Given the need to set the CORS headers for callers.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				h := mid.Cors(tst.origins...)(next)

				r := httptest.NewRequest(http.MethodGet, "/v1/blockchain", nil)
				r.Header.Set("Origin", tst.origin)
				w := httptest.NewRecorder()

				if err := h(context.Background(), w, r); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould call the handler: %s", failed, testID, err)
				}

				if got := w.Header().Get("Access-Control-Allow-Origin"); got != tst.exp {
					t.Fatalf("\t%s\tTest %d:\tShould allow origin %q, got %q.", failed, testID, tst.exp, got)
				}
				t.Logf("\t%s\tTest %d:\tShould allow origin %q.", success, testID, tst.exp)
			}

			t.Run(tst.name, f)
		}
	}
}
