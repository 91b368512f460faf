package ai

import (
	"fmt"
	"strings"

	"task-secretary-api/internal/dates"
)

const decomposePrompt = `You are a task decomposition system that turns tasks into clear execution paths.

1. Analyse the task:
   - Type: "period" (a project with a start and end date), "one-off" (a single event to get done)
     or "habit" (a behaviour to keep up over time).
   - Complexity: "simple" (at most 3 steps, no tricky dependencies) or "complex"
     (several stages or specialist knowledge).

2. Step limits:
   - simple one-off task: at most 3 steps
   - simple habit task: at most 3 steps
   - every other task: at most 5 steps
   - keep only the core actionable steps

3. Output exactly this template:
{
  "type": "one-off",
  "complexity": "simple",
  "steps": ["step 1", "step 2", "step N"]
}

Return only the JSON object, nothing else.`

const schedulePrompt = `You are a task scheduling system. Subtasks must not pile up on the same day;
spread them evenly according to a reasonable daily load.

Rules:
1. Even spread: avoid putting several subtasks on one day.
2. Range: every subtask date must fall between today and the deadline, inclusive.
3. Load: simple tasks may take 2-3 subtasks per day, complex tasks 1-2 per day.
4. Urgent work goes early; leave some buffer before the deadline.

Return only JSON in exactly this shape:
{
  "schedule": [
    {
      "name": "subtask name",
      "date": "2024-12-20",
      "estimatedTime": 120,
      "completed": false,
      "priority": 1,
      "workload": "medium"
    }
  ]
}`

const assistPrompt = `You are a task assistant. Using the task title and description below, help the user get
the task done. Answer with a structured, detailed and actionable plan.`

func decomposeContext(b Brief) string {
	return strings.Join([]string{
		"Task description: " + b.Description,
		"Category: " + b.Category,
		"Deadline: " + b.Deadline,
		"Today: " + dates.Format(b.Today),
	}, "\n")
}

func scheduleContext(b Brief, d Decomposition) string {
	return strings.Join([]string{
		"Task: " + b.Description,
		"Category: " + b.Category,
		"Deadline: " + b.Deadline,
		"Type: " + string(d.Type),
		"Complexity: " + string(d.Complexity),
		"Steps: " + strings.Join(d.Steps, ", "),
		"Today: " + dates.Format(b.Today),
	}, "\n")
}

func assistContext(title, description string) string {
	return fmt.Sprintf("Task title: %s\nTask description: %s", title, description)
}
