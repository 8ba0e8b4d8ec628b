package reporting

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/xkilldash9x/hrmcheck/api/schemas"
)

// junitRenderer emits the JUnit XML layout CI systems understand: one
// testsuite per run and one testcase per scenario. Failed scenarios carry a
// <failure>, errored ones an <error>.
type junitRenderer struct{}

func (junitRenderer) render(w io.Writer, runs []*schemas.Run, m meta) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("testsuites")
	root.CreateAttr("name", m.Title)

	var total schemas.Summary
	var elapsed time.Duration
	for _, run := range runs {
		s := run.Summary()
		total.Total += s.Total
		total.Failed += s.Failed
		total.Errors += s.Errors
		elapsed += run.Duration()

		suite := root.CreateElement("testsuite")
		suite.CreateAttr("name", ToolName)
		suite.CreateAttr("id", run.ID)
		suite.CreateAttr("tests", strconv.Itoa(s.Total))
		suite.CreateAttr("failures", strconv.Itoa(s.Failed))
		suite.CreateAttr("errors", strconv.Itoa(s.Errors))
		suite.CreateAttr("skipped", "0")
		suite.CreateAttr("time", junitSeconds(run.Duration()))
		if !run.StartedAt.IsZero() {
			suite.CreateAttr("timestamp", run.StartedAt.UTC().Format("2006-01-02T15:04:05"))
		}

		props := suite.CreateElement("properties")
		addProperty(props, "target", run.Target)
		if m.Version != "" {
			addProperty(props, "version", m.Version)
		}

		for _, o := range run.Outcomes {
			tc := suite.CreateElement("testcase")
			tc.CreateAttr("name", o.Scenario)
			tc.CreateAttr("classname", ToolName+"."+o.Scenario)
			tc.CreateAttr("time", junitSeconds(o.Duration))

			switch o.Status {
			case schemas.StatusPass:
			case schemas.StatusFail:
				appendProblem(tc, "failure", o)
			default:
				appendProblem(tc, "error", o)
			}
		}
	}

	root.CreateAttr("tests", strconv.Itoa(total.Total))
	root.CreateAttr("failures", strconv.Itoa(total.Failed))
	root.CreateAttr("errors", strconv.Itoa(total.Errors))
	root.CreateAttr("time", junitSeconds(elapsed))

	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}

func appendProblem(tc *etree.Element, tag string, o schemas.Outcome) {
	el := tc.CreateElement(tag)
	msg := o.Message
	if o.Condition != "" {
		msg = fmt.Sprintf("[%s] %s", o.Condition, o.Message)
	}
	el.CreateAttr("message", msg)
	el.CreateAttr("type", string(o.Status))
	el.SetText(o.Message)
}

func addProperty(props *etree.Element, name, value string) {
	p := props.CreateElement("property")
	p.CreateAttr("name", name)
	p.CreateAttr("value", value)
}

func junitSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
