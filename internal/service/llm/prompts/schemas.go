package prompts

// JSON contracts the plan parser accepts. Percent fields are relative to the
// runner's peak weekly volume; absolute fields are the fallback.

const stepSchema = `{
          "type": "warmup | work | recovery | cooldown",
          "goal_type": "distance | time | open",
          "goal_value": number,
          "volume_percent": number,
          "intensity": "easy | marathon | threshold | interval | repetition" or percent of VO2max,
          "hr_zone": 1-5,
          "repeat_count": integer >= 1,
          "group_id": integer, steps sharing a nonzero group_id form one repeat block,
          "notes": string
        }`

const workoutSchema = `{
      "name": string,
      "type": "easy | long | tempo | interval | recovery | fartlek | hills | race | rest | cross_training",
      "day_of_week": 1-7 (1 = Sunday),
      "daily_volume_percent": number,
      "intensity": "easy | marathon | threshold | interval | repetition" or percent of VO2max,
      "location": "outdoor | treadmill | track | trail",
      "notes": string,
      "steps": [
        ` + stepSchema + `
      ]
    }`

// FullPlanSchema describes a complete plan with workouts and steps.
const FullPlanSchema = `{
  "name": string,
  "goal": string,
  "vdot": number,
  "weeks": [
    {
      "week_number": integer starting at 1,
      "theme": string,
      "weekly_volume_percent": number,
      "notes": string,
      "workouts": [
    ` + workoutSchema + `
      ]
    }
  ]
}`

// OutlineSchema describes a plan skeleton without workouts.
const OutlineSchema = `{
  "name": string,
  "goal": string,
  "vdot": number,
  "weeks": [
    {
      "week_number": integer starting at 1,
      "theme": string,
      "weekly_volume_percent": number,
      "notes": string
    }
  ]
}`

// WeekWorkoutsSchema describes the workouts of a single week.
const WeekWorkoutsSchema = `{
  "workouts": [
    ` + workoutSchema + `
  ]
}`
