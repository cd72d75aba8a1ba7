package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/powchain/app/services/viewer/handlers"
	"go.uber.org/zap/zaptest"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Index(t *testing.T) {
	t.Log("Given the need to serve the viewer page.")
	{
		t.Logf("\tTest 0:\tWhen requesting the index.")
		{
			mux, err := handlers.UIMux(handlers.MuxConfig{
				Shutdown: make(chan os.Signal, 1),
				Log:      zaptest.NewLogger(t).Sugar(),
				NodeHost: "node.example:8080",
			})
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct the mux: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to construct the mux.", success)

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 0:\tShould receive a 200: got %d", failed, w.Code)
			}
			t.Logf("\t%s\tTest 0:\tShould receive a 200.", success)

			if !strings.Contains(w.Body.String(), "node.example:8080") {
				t.Fatalf("\t%s\tTest 0:\tShould render the node host into the page.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould render the node host into the page.", success)
		}
	}
}
