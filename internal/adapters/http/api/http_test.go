package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/lapreplay/internal/adapters/http/api"
	service "github.com/okian/lapreplay/internal/app"
	"github.com/okian/lapreplay/internal/domain/report"
	"github.com/okian/lapreplay/internal/domain/standings"
	"github.com/okian/lapreplay/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

const raceLog = `{"type":"AddTag","tag":"t1","teamNb":1}
{"type":"AddTag","tag":"t2","teamNb":2}
{"type":"Start","time":0}
{"type":"TagSeen","tag":"t1","readerId":0,"time":100}
{"type":"TagSeen","tag":"t2","readerId":0,"time":101}
{"type":"TagSeen","tag":"t1","readerId":0,"time":145}
{"type":"TagSeen","tag":"t1","readerId":0,"time":200}
{"type":"TagSeen","tag":"t2","readerId":0,"time":170}
`

// failingDeps returns a fixed error from every call.
type failingDeps struct{ err error }

func (f failingDeps) Replay(context.Context, io.Reader) (*report.Report, error) { return nil, f.err }
func (f failingDeps) Latest() (*report.Report, error)                           { return nil, f.err }
func (f failingDeps) Standings(context.Context, int, int) ([]standings.Entry, error) {
	return nil, f.err
}

func serve(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func newMux(deps api.Dependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, opts...).Register(context.Background(), mux)
	return mux
}

func TestServer_Register(t *testing.T) {
	Convey("Given a server backed by a fresh service", t, func() {
		svc := service.New(service.WithReaders(1), service.WithTeams([]int{1, 2}))
		mux := newMux(svc, api.WithMaxLimit(10))

		Convey("Then health and metrics are served", func() {
			w := serve(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)

			w = serve(mux, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "lapreplay_")
		})

		Convey("When no replay has run", func() {
			Convey("Then standings and the latest report are not found", func() {
				So(serve(mux, http.MethodGet, "/standings", "").Code, ShouldEqual, http.StatusNotFound)
				So(serve(mux, http.MethodGet, "/replays/latest", "").Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When posting a race log", func() {
			w := serve(mux, http.MethodPost, "/replays", raceLog)

			Convey("Then the report is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var rep report.Report
				So(json.Unmarshal(w.Body.Bytes(), &rep), ShouldBeNil)
				So(rep.RunID, ShouldNotBeEmpty)
				So(rep.Pairs, ShouldHaveLength, 2)
				So(rep.Pairs[0].Gaps, ShouldResemble, []float64{45, 55})
			})

			Convey("Then standings reflect it", func() {
				w := serve(mux, http.MethodGet, "/standings?reader=0&limit=1", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var entries []standings.Entry
				So(json.Unmarshal(w.Body.Bytes(), &entries), ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Team, ShouldEqual, 1)
				So(entries[0].Passes, ShouldEqual, 2)
			})

			Convey("Then the latest report is served", func() {
				So(serve(mux, http.MethodGet, "/replays/latest", "").Code, ShouldEqual, http.StatusOK)
			})

			Convey("Then invalid standings parameters are rejected", func() {
				So(serve(mux, http.MethodGet, "/standings?limit=0", "").Code, ShouldEqual, http.StatusBadRequest)
				So(serve(mux, http.MethodGet, "/standings?limit=11", "").Code, ShouldEqual, http.StatusBadRequest)
				So(serve(mux, http.MethodGet, "/standings?reader=x", "").Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When posting a malformed log", func() {
			w := serve(mux, http.MethodPost, "/replays", "{oops\n")

			Convey("Then a 400 with a code is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, `"code":"malformed_log"`)
			})
		})

		Convey("When the log removes an unassigned tag", func() {
			w := serve(mux, http.MethodPost, "/replays", `{"type":"RemoveTag","tag":"x"}`+"\n")

			Convey("Then a 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, `"code":"tag_not_assigned"`)
			})
		})

		Convey("When the body exceeds the limit", func() {
			small := newMux(svc, api.WithMaxBodyBytes(16))
			w := serve(small, http.MethodPost, "/replays", raceLog)

			Convey("Then a 413 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			})
		})

		Convey("When using the wrong method", func() {
			Convey("Then the routes answer 404", func() {
				So(serve(mux, http.MethodGet, "/replays", "").Code, ShouldEqual, http.StatusNotFound)
				So(serve(mux, http.MethodPost, "/standings", "x").Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})

	Convey("Given dependencies that fail unexpectedly", t, func() {
		mux := newMux(failingDeps{err: errors.New("disk on fire")})

		Convey("Then replay and standings answer 500", func() {
			w := serve(mux, http.MethodPost, "/replays", raceLog)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldContainSubstring, "api.post_replay: disk on fire")
			So(serve(mux, http.MethodGet, "/standings", "").Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}
