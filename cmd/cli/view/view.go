package view

import (
	"fmt"
	"strings"

	"github.com/groundcrew/runway/pkg/convention/deployment"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/golang-module/carbon/v2"
)

var borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

type DeploymentsView struct {
	Deployments []deployment.Deployment
}

type PlanView struct {
	Service string
	Plan    deployment.Plan
}

func (v DeploymentsView) Render() string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("SERVICE", "REVISION", "READY", "AGE", "URL")

	for _, d := range v.Deployments {
		status, _, _ := d.Condition()

		age := ""
		if d.CreatedAt() != "" {
			age = carbon.Parse(d.CreatedAt()).DiffForHumans()
		}

		t.Row(d.Name(), d.Revision(), status, age, d.Url())
	}

	return t.Render()
}

func (v PlanView) Render() string {
	switch v.Plan.Action {
	case deployment.ActionCreate:
		return fmt.Sprintf("service %s does not exist yet, deploy will create it", v.Service)

	case deployment.ActionNoop:
		return fmt.Sprintf("service %s matches its declaration, deploy will change nothing", v.Service)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("FIELD", "LIVE", "DESIRED")

	for _, change := range v.Plan.Changes {
		t.Row(change.Field, change.Live, change.Desired)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "service %s has drifted from its declaration, deploy will replace it\n", v.Service)
	b.WriteString(t.Render())

	return b.String()
}
