package aws

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/trustgate/ksbridge/internal/cckm"
)

// reportSchemaProperties describes the aws_reports_params bag.
func reportSchemaProperties() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("report_type", describe(openapi3.NewStringSchema(),
			"Type of report to generate")).
		WithProperty("name", describe(openapi3.NewStringSchema(),
			"Unique name for the report")).
		WithProperty("start_time", describe(openapi3.NewStringSchema(),
			"Start time for report generation")).
		WithProperty("end_time", describe(openapi3.NewStringSchema(),
			"End time for report generation")).
		WithProperty("id", describe(openapi3.NewStringSchema(),
			"Report job ID or resource identifier for filtering")).
		WithProperty("create_report_jobs_jsonfile", describe(openapi3.NewStringSchema(),
			"JSON file with report job parameters")).
		WithProperty("cloud_watch_params_jsonfile", describe(openapi3.NewStringSchema(),
			"JSON file with CloudWatch parameters")).
		WithProperty("cloud_watch_params", describe(openapi3.NewStringSchema(),
			"CloudWatch parameters in JSON format")).
		WithProperty("limit", describe(openapi3.NewIntegerSchema(),
			"Maximum number of results to return")).
		WithProperty("skip", describe(openapi3.NewIntegerSchema(),
			"Number of results to skip")).
		WithProperty("key_arn", describe(openapi3.NewStringSchema(),
			"Filter by key ARN")).
		WithProperty("region", describe(openapi3.NewStringSchema(),
			"Filter by region")).
		WithProperty("aws_account_id", describe(openapi3.NewStringSchema(),
			"Filter by AWS account ID")).
		WithProperty("cloud_name", describe(openapi3.NewStringSchema(),
			"Filter by cloud name")).
		WithProperty("sort", describe(openapi3.NewStringSchema(),
			"Sort parameter"))
}

func reportRequirements() map[string]cckm.Requirement {
	idOnly := cckm.Requirement{Required: []string{"id"}}
	return map[string]cckm.Requirement{
		"reports_list": {Optional: []string{"limit", "skip"}},
		"reports_get":  idOnly,
		"reports_generate": {
			Required: []string{"report_type", "name", "start_time"},
			Optional: []string{"end_time", "create_report_jobs_jsonfile", "cloud_watch_params_jsonfile"},
		},
		"reports_download": idOnly,
		"reports_delete":   idOnly,
		"reports_get_reports": {
			Optional: []string{"id", "key_arn", "region", "aws_account_id", "cloud_name", "limit", "skip", "sort"},
		},
	}
}

// buildReportsCommand renders the ksctl argument list for one AWS report
// operation over the merged parameter view.
func buildReportsCommand(action string, p map[string]any) ([]string, error) {
	verb := strings.TrimPrefix(action, "reports_")
	cmd := cckm.NewArgList("cckm", "aws", "reports")

	switch verb {
	case "get", "download", "delete":
		cmd.Add(verb).Required(p, "id", "--id")

	case "list":
		cmd.Add("list").
			Optional(p, "limit", "--limit").
			Optional(p, "skip", "--skip")

	case "generate":
		cmd.Add("generate-report").
			Required(p, "report_type", "--report-type").
			Required(p, "name", "--name").
			Required(p, "start_time", "--start-time").
			Optional(p, "cloud_watch_params_jsonfile", "--cloud-watch-params-jsonfile").
			Optional(p, "end_time", "--end-time").
			Optional(p, "create_report_jobs_jsonfile", "--create-report-jobs-jsonfile")

	case "get_reports":
		cmd.Add("get-reports").
			Optional(p, "id", "--id").
			Optional(p, "key_arn", "--key-arn").
			Optional(p, "region", "--region").
			Optional(p, "aws_account_id", "--aws-account-id").
			Optional(p, "cloud_name", "--cloud-name").
			Optional(p, "limit", "--limit").
			Optional(p, "skip", "--skip").
			Optional(p, "sort", "--sort")

	default:
		return nil, &cckm.UnsupportedOperationError{Provider: "aws", Action: action}
	}

	return cmd.Build()
}
