package eventlog_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/okian/lapreplay/internal/domain/eventlog"
	"github.com/okian/lapreplay/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const sampleLog = `{"type":"AddTag","time":1414590000.0,"tag":"002420140001","teamNb":1}
{"type":"Start","time":1414590010.5}

{"type":"TagSeen","time":1414590100.25,"tag":"002420140001","readerId":2}
{"type":"StatusChange","time":1414590200.0,"status":"Running"}
{"type":"RemoveTag","time":1414590300.0,"tag":"002420140001"}
{"type":"End","time":1414600000.0}
`

func collect(d *eventlog.Decoder) ([]model.Event, error) {
	var events []model.Event
	for ev, err := range d.All() {
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func TestDecoder(t *testing.T) {
	Convey("Given a well-formed event log", t, func() {
		d := eventlog.NewDecoder(strings.NewReader(sampleLog))

		Convey("When decoding all events", func() {
			events, err := collect(d)

			Convey("Then every non-blank line yields one event in order", func() {
				So(err, ShouldBeNil)
				So(len(events), ShouldEqual, 6)
				So(events[0], ShouldResemble, model.Event{Type: model.AddTag, Tag: "002420140001", TeamNb: 1, Line: 1})
				So(events[1].Type, ShouldEqual, model.Start)
				So(events[2], ShouldResemble, model.Event{Type: model.TagSeen, Tag: "002420140001", ReaderID: 2, Time: 1414590100.25, Line: 4})
				So(events[3].Type, ShouldEqual, model.EventType("StatusChange"))
				So(events[3].Type.Handled(), ShouldBeFalse)
				So(events[4], ShouldResemble, model.Event{Type: model.RemoveTag, Tag: "002420140001", Line: 6})
				So(events[5].Type, ShouldEqual, model.End)
			})

			Convey("And Next reports io.EOF afterwards", func() {
				_, err := d.Next()
				So(errors.Is(err, io.EOF), ShouldBeTrue)
			})
		})

		Convey("When the consumer stops early", func() {
			count := 0
			for range d.All() {
				count++
				if count == 2 {
					break
				}
			}

			Convey("Then decoding resumes where it stopped", func() {
				ev, err := d.Next()
				So(err, ShouldBeNil)
				So(ev.Type, ShouldEqual, model.TagSeen)
				So(d.Line(), ShouldEqual, 4)
			})
		})
	})

	Convey("Given malformed records", t, func() {
		cases := []struct{ name, input string }{
			{"not json", `{"type":"Start"` + "\n"},
			{"missing type", `{"tag":"x"}` + "\n"},
			{"non-string type", `{"type":3}` + "\n"},
			{"json array", `[1,2]` + "\n"},
			{"AddTag without team", `{"type":"AddTag","tag":"x"}` + "\n"},
			{"RemoveTag without tag", `{"type":"RemoveTag"}` + "\n"},
			{"TagSeen without time", `{"type":"TagSeen","tag":"x","readerId":0}` + "\n"},
			{"TagSeen string time", `{"type":"TagSeen","tag":"x","readerId":0,"time":"10"}` + "\n"},
		}
		for _, tc := range cases {
			Convey("When decoding "+tc.name, func() {
				events, err := collect(eventlog.NewDecoder(strings.NewReader(`{"type":"Start"}` + "\n" + tc.input)))

				Convey("Then decoding stops with ErrMalformed on line 2", func() {
					So(len(events), ShouldEqual, 1)
					So(errors.Is(err, eventlog.ErrMalformed), ShouldBeTrue)
					So(err.Error(), ShouldStartWith, "line 2:")
				})
			})
		}

		Convey("When Next is called again after the failure", func() {
			d := eventlog.NewDecoder(strings.NewReader("garbage\n" + `{"type":"Start"}` + "\n"))
			_, first := d.Next()
			_, second := d.Next()

			Convey("Then the same error is returned", func() {
				So(errors.Is(first, eventlog.ErrMalformed), ShouldBeTrue)
				So(second, ShouldEqual, first)
			})
		})
	})

	Convey("Given a line longer than the limit", t, func() {
		long := `{"type":"Message","message":"` + strings.Repeat("x", 256) + `"}` + "\n"
		d := eventlog.NewDecoder(strings.NewReader(`{"type":"Start"}`+"\n"+long), eventlog.WithMaxLineBytes(64))
		events, err := collect(d)

		Convey("Then decoding fails with ErrLineTooLong", func() {
			So(len(events), ShouldEqual, 1)
			So(errors.Is(err, eventlog.ErrLineTooLong), ShouldBeTrue)
		})
	})
}

func TestDecodeTagUpdate(t *testing.T) {
	Convey("Given a reader log line", t, func() {
		u, err := eventlog.DecodeTagUpdate([]byte(`{"readerId":1,"updateCount":42,"updateTime":12345.678,"tag":"0024201500AB"}`))

		Convey("Then all fields are decoded", func() {
			So(err, ShouldBeNil)
			So(u, ShouldResemble, model.TagUpdate{ReaderID: 1, UpdateCount: 42, UpdateTime: 12345.678, Tag: "0024201500AB"})
		})
	})

	Convey("Given a reader log line without updateTime", t, func() {
		_, err := eventlog.DecodeTagUpdate([]byte(`{"readerId":1,"tag":"x"}`))

		Convey("Then it is malformed", func() {
			So(errors.Is(err, eventlog.ErrMalformed), ShouldBeTrue)
		})
	})
}
