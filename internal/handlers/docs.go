package handlers

import (
	"encoding/json"
	"net/http"
)

func queryParam(name, description string, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "query",
		"description": description,
		"required":    false,
		"schema":      schema,
	}
}

func selectionParams() []map[string]interface{} {
	return []map[string]interface{}{
		queryParam("year_min", "First year of the inclusive range (default: earliest year in the data)",
			map[string]interface{}{"type": "integer"}),
		queryParam("year_max", "Last year of the inclusive range (default: latest year in the data)",
			map[string]interface{}{"type": "integer"}),
		{
			"name":        "commodity",
			"in":          "query",
			"description": "Commodity to include; repeat for several (default: every commodity). An empty value selects none.",
			"required":    false,
			"style":       "form",
			"explode":     true,
			"schema":      map[string]interface{}{"type": "array", "items": map[string]string{"type": "string"}},
		},
		queryParam("state", "State name, or All (default: All)",
			map[string]interface{}{"type": "string", "default": "All"}),
		queryParam("include_withheld", "Include rows whose state is Withheld (default: true)",
			map[string]interface{}{"type": "boolean", "default": true}),
	}
}

func jsonContent(schema interface{}) map[string]interface{} {
	return map[string]interface{}{
		"application/json": map[string]interface{}{"schema": schema},
	}
}

func errorResponses() map[string]interface{} {
	ref := map[string]string{"$ref": "#/components/schemas/Error"}
	return map[string]interface{}{
		"400": map[string]interface{}{"description": "Invalid filter parameters", "content": jsonContent(ref)},
		"500": map[string]interface{}{"description": "Data source could not be read", "content": jsonContent(ref)},
		"503": map[string]interface{}{"description": "No data file found", "content": jsonContent(ref)},
	}
}

func withErrors(ok map[string]interface{}) map[string]interface{} {
	responses := errorResponses()
	responses["200"] = ok
	return responses
}

// OpenAPISpec returns the OpenAPI 3.0 specification for the dashboard API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	number := map[string]string{"type": "number"}
	integer := map[string]string{"type": "integer"}
	str := map[string]string{"type": "string"}
	boolean := map[string]string{"type": "boolean"}

	ranking := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"available": boolean,
			"entries": map[string]interface{}{
				"type":     "array",
				"maxItems": 12,
				"items": map[string]interface{}{
					"type":       "object",
					"properties": map[string]interface{}{"key": str, "volume": number},
				},
			},
		},
	}

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Oil & Gas Production Dashboard API",
			"description": "Filtered KPIs and aggregates over U.S. federal oil & gas production and disposition records",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/dashboard": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Compute the dashboard",
					"description": "Filter the loaded dataset and return KPIs, volume by year, volume by year and commodity, top states, and top dispositions",
					"parameters":  selectionParams(),
					"responses": withErrors(map[string]interface{}{
						"description": "Dashboard result",
						"content":     jsonContent(map[string]string{"$ref": "#/components/schemas/DashboardResult"}),
					}),
				},
			},
			"/api/dashboard/options": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List filter options",
					"description": "Distinct years, commodities, and states in the loaded dataset, plus the default selection",
					"responses": withErrors(map[string]interface{}{
						"description": "Filter options",
						"content": jsonContent(map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"source_path": str,
								"rows":        integer,
								"choices": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"years":       map[string]interface{}{"type": "array", "items": integer},
										"commodities": map[string]interface{}{"type": "array", "items": str},
										"states":      map[string]interface{}{"type": "array", "items": str},
									},
								},
								"defaults": map[string]string{"$ref": "#/components/schemas/Filter"},
							},
						}),
					}),
				},
			},
			"/api/dashboard/export.xlsx": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Export the dashboard as a workbook",
					"description": "Same selection as /api/dashboard, rendered as an .xlsx file with one sheet per panel",
					"parameters":  selectionParams(),
					"responses": withErrors(map[string]interface{}{
						"description": "Workbook",
						"content": map[string]interface{}{
							XLSXContentType: map[string]interface{}{
								"schema": map[string]string{"type": "string", "format": "binary"},
							},
						},
					}),
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check that a data file can be found and opened",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Data source is reachable",
							"content": jsonContent(map[string]interface{}{
								"type":       "object",
								"properties": map[string]interface{}{"status": str, "timestamp": str},
							}),
						},
						"503": map[string]interface{}{"description": "No readable data source"},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{"schema": str},
							},
						},
					},
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"Error": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"error": str, "message": str, "code": integer, "field": str,
					},
				},
				"Filter": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"year_min":         integer,
						"year_max":         integer,
						"commodities":      map[string]interface{}{"type": "array", "items": str},
						"state":            str,
						"include_withheld": boolean,
					},
				},
				"DashboardResult": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"title":        str,
						"source_path":  str,
						"filter":       map[string]string{"$ref": "#/components/schemas/Filter"},
						"matched_rows": integer,
						"kpis": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"total_volume": map[string]interface{}{
									"type":       "object",
									"properties": map[string]interface{}{"volume": number, "available": boolean},
								},
								"rows": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"non_negative": integer, "negative": integer, "available": boolean,
									},
								},
							},
						},
						"volume_by_year": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"available": boolean,
								"points": map[string]interface{}{
									"type": "array",
									"items": map[string]interface{}{
										"type":       "object",
										"properties": map[string]interface{}{"year": integer, "volume": number},
									},
								},
							},
						},
						"volume_by_year_commodity": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"available":   boolean,
								"years":       map[string]interface{}{"type": "array", "items": integer},
								"commodities": map[string]interface{}{"type": "array", "items": str},
								"values": map[string]interface{}{
									"type":  "array",
									"items": map[string]interface{}{"type": "array", "items": number},
								},
							},
						},
						"top_states":       ranking,
						"top_dispositions": ranking,
						"panels": map[string]interface{}{
							"type": "array",
							"items": map[string]interface{}{
								"type":       "object",
								"properties": map[string]interface{}{"panel": str, "severity": str, "message": str},
							},
						},
						"diagnostics": map[string]interface{}{
							"type": "array",
							"items": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"severity": str, "kind": str, "column": str, "count": integer, "message": str,
								},
							},
						},
						"notes": map[string]interface{}{"type": "array", "items": str},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
