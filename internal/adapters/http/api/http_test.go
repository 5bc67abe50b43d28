package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/plaudit/internal/adapters/http/api"
	service "github.com/okian/plaudit/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestMux(ctx context.Context, opts ...service.Option) (*http.ServeMux, *service.Service) {
	svc := service.New(opts...)
	So(svc.Start(ctx), ShouldBeNil)

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(ctx, mux)
	return mux, svc
}

func doJSON(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestSubmissionEndpoints(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		ctx := context.Background()
		mux, svc := newTestMux(ctx)
		defer svc.Stop()

		addBody := `{"account":"alice","website":"site-a","item":"item-1","criteria":"general","display_name":"Corner Cafe","overall":80,"ratings":{"quality":4}}`

		Convey("When posting a valid submission", func() {
			rec := doJSON(mux, http.MethodPost, "/submissions", addBody)
			So(rec.Code, ShouldEqual, http.StatusOK)

			var resp struct {
				Status  string `json:"status"`
				Summary struct {
					Count   int `json:"count"`
					Average int `json:"average"`
				} `json:"summary"`
			}
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)

			Convey("Then the submission is accepted with a summary", func() {
				So(resp.Status, ShouldEqual, "accepted")
				So(resp.Summary.Count, ShouldEqual, 1)
				So(resp.Summary.Average, ShouldEqual, 80)
			})

			Convey("And posting again replaces", func() {
				rec := doJSON(mux, http.MethodPost, "/submissions", addBody)
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"status":"replaced"`)
			})

			Convey("And the basic summary endpoint reflects it", func() {
				rec := doJSON(mux, http.MethodGet, "/summary/basic?website=site-a&item=item-1&criteria=general", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"count":1`)
			})

			Convey("And deleting it returns the post-removal summary", func() {
				rec := doJSON(mux, http.MethodDelete, "/submissions?account=alice&website=site-a&item=item-1&criteria=general", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"status":"removed"`)
				So(rec.Body.String(), ShouldContainSubstring, `"count":0`)
			})
		})

		Convey("When posting malformed requests", func() {
			cases := []string{
				`not json`,
				`{"website":"site-a","item":"item-1","criteria":"general","overall":80}`,
				`{"account":"alice","website":"site-a","item":"item-1","criteria":"bogus","overall":80}`,
				`{"account":"alice","website":"site-a","item":"item-1","criteria":"general","overall":85}`,
				`{"account":"alice","website":"site-a","item":"item-1","criteria":"general","overall":80,"ratings":{"mystery":3}}`,
			}
			for _, body := range cases {
				rec := doJSON(mux, http.MethodPost, "/submissions", body)
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When deleting a submission that does not exist", func() {
			rec := doJSON(mux, http.MethodDelete, "/submissions?account=ghost&website=site-a&item=item-1&criteria=general", "")

			Convey("Then the API answers 404", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When querying a summary for an unrated entity", func() {
			rec := doJSON(mux, http.MethodGet, "/summary/detailed?website=site-a&item=ghost&criteria=general", "")

			Convey("Then it answers 200 with an empty summary", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"count":0`)
			})
		})
	})
}

func TestWebsiteAdminEndpoint(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		ctx := context.Background()
		mux, svc := newTestMux(ctx)
		defer svc.Stop()

		Convey("When disabling a website", func() {
			rec := doJSON(mux, http.MethodPut, "/websites/site-a", `{"enabled":false}`)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"previous":true`)

			Convey("Then submissions to it answer 404", func() {
				body := `{"account":"alice","website":"site-a","item":"item-1","criteria":"general","display_name":"X","overall":80}`
				rec := doJSON(mux, http.MethodPost, "/submissions", body)
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(rec.Body.String(), ShouldContainSubstring, "not_available")
			})

			Convey("And re-enabling reports the disabled previous state", func() {
				rec := doJSON(mux, http.MethodPut, "/websites/site-a", `{"enabled":true}`)
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"previous":false`)
			})
		})

		Convey("When the website id is missing", func() {
			rec := doJSON(mux, http.MethodPut, "/websites/", `{"enabled":false}`)

			Convey("Then the API answers 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestFeaturedEndpoint(t *testing.T) {
	Convey("Given an API server with rated entities", t, func() {
		ctx := context.Background()
		mux, svc := newTestMux(ctx)
		defer svc.Stop()

		for i := 0; i < 5; i++ {
			body := fmt.Sprintf(
				`{"account":"alice","website":"site-a","item":"item-%d","criteria":"general","display_name":"Place %d","overall":80}`, i, i)
			rec := doJSON(mux, http.MethodPost, "/submissions", body)
			So(rec.Code, ShouldEqual, http.StatusOK)
		}
		svc.RunHousekeeping(ctx)

		Convey("When sampling the new index page by page", func() {
			rec := doJSON(mux, http.MethodGet, "/featured?kind=new&criteria=general&websites=site-a&size=3", "")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var first struct {
				Entries   []map[string]any `json:"entries"`
				EndOfData bool             `json:"end_of_data"`
				Next      string           `json:"next"`
			}
			So(json.Unmarshal(rec.Body.Bytes(), &first), ShouldBeNil)
			So(len(first.Entries), ShouldEqual, 3)
			So(first.EndOfData, ShouldBeFalse)
			So(first.Next, ShouldNotBeEmpty)

			Convey("Then the cursor resumes without overlap", func() {
				rec := doJSON(mux, http.MethodGet, "/featured?kind=new&criteria=general&websites=site-a&size=3&cursor="+first.Next, "")
				So(rec.Code, ShouldEqual, http.StatusOK)

				var second struct {
					Entries   []map[string]any `json:"entries"`
					EndOfData bool             `json:"end_of_data"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &second), ShouldBeNil)
				So(len(second.Entries), ShouldEqual, 2)
				So(second.EndOfData, ShouldBeTrue)

				seen := map[any]bool{}
				for _, e := range append(first.Entries, second.Entries...) {
					So(seen[e["item"]], ShouldBeFalse)
					seen[e["item"]] = true
				}
			})
		})

		Convey("When the request is malformed", func() {
			for _, target := range []string{
				"/featured?kind=trending&criteria=general&websites=site-a",
				"/featured?kind=new&criteria=bogus&websites=site-a",
				"/featured?kind=new&criteria=general",
				"/featured?kind=new&criteria=general&websites=site-a&cursor=garbage",
				"/featured?kind=new&criteria=general&websites=site-a&size=-1",
			} {
				rec := doJSON(mux, http.MethodGet, target, "")
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			}
		})
	})
}

func TestRateLimiting(t *testing.T) {
	Convey("Given a server with a tight rate limit", t, func() {
		ctx := context.Background()
		svc := service.New()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc, api.WithRateLimit(1, 1)).Register(ctx, mux)

		Convey("When one client fires two immediate requests", func() {
			target := "/summary/basic?website=site-a&item=item-1&criteria=general"
			first := doJSON(mux, http.MethodGet, target, "")
			second := doJSON(mux, http.MethodGet, target, "")

			Convey("Then the second is rejected with 429", func() {
				So(first.Code, ShouldEqual, http.StatusOK)
				So(second.Code, ShouldEqual, http.StatusTooManyRequests)
			})
		})
	})
}

func TestStatsAndHealth(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		ctx := context.Background()
		mux, svc := newTestMux(ctx)
		defer svc.Stop()

		Convey("When fetching stats", func() {
			rec := doJSON(mux, http.MethodGet, "/stats", "")

			Convey("Then service statistics come back as JSON", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"started":true`)
			})
		})

		Convey("When fetching health", func() {
			rec := doJSON(mux, http.MethodGet, "/healthz", "")

			Convey("Then the metrics registry is served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}
