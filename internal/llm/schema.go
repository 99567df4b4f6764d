package llm

func stringSchema(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func bulletsSchema() map[string]any {
	return map[string]any{
		"type":        "array",
		"description": "Exactly 4 concise bullet points, each at most 15 words",
		"items":       map[string]any{"type": "string"},
	}
}

// JSONSchema returns the JSON Schema for the document of the given shape, in
// the subset accepted by strict structured-output modes.
func JSONSchema(shape Shape) map[string]any {
	slide := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":   stringSchema("Compelling slide title, at most 8 words"),
			"bullets": bulletsSchema(),
			"notes":   stringSchema("Speaker notes with delivery guidance"),
		},
		"required":             []string{"title", "bullets", "notes"},
		"additionalProperties": false,
	}
	if shape == ShapeSlide {
		return slide
	}

	slide["properties"].(map[string]any)["imageKeyword"] = stringSchema("1-3 word stock photo search term")
	slide["required"] = []string{"title", "bullets", "notes", "imageKeyword"}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"slides": map[string]any{
				"type":        "array",
				"description": "Exactly 5 slides in presentation order",
				"items":       slide,
			},
		},
		"required":             []string{"slides"},
		"additionalProperties": false,
	}
}
