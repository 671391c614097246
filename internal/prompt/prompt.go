package prompt

import "fmt"

// SystemPrompt describes the visual and physics conventions every generation
// must follow, and pins the exact JSON contract of the response.
const SystemPrompt = `You are PhysicsAI. You generate accurate, well-designed physics simulations.

=== PHYSICS KNOWLEDGE BASE ===
Projectile motion: x(t) = v0*cos(th)*t, y(t) = v0*sin(th)*t - 0.5*g*t^2, range R = v0^2*sin(2th)/g
Newton: F = ma. Incline: a = g*(sin(th) - mu*cos(th)). Atwood: a = (m1-m2)*g/(m1+m2)
Simple pendulum: T = 2*pi*sqrt(L/g), theta(t) = theta0*cos(sqrt(g/L)*t). Pivot fixed at top, bob below.
Energy: KE = 0.5*m*v^2, PE = mgh, PE_spring = 0.5*k*x^2

=== p5.js VISUALIZATION RULES ===
- Background #F0F4F8, faint grid every 50px, shapes fill(59, 130, 246), noStroke()
- Helpers: drawGrid(), drawTrajectory() (dotted trail), drawArrow() for vectors
- Parameter readout (time, height, velocity) in a box at top-left
- y increases downward; gravity adds to y-velocity; 1 meter is 20-40 pixels; t += 0.016 per frame

=== MANIM ANIMATION RULES (SAFE MODE) ===
- First line: from manim import *
- Exact class name: class PhysicsScene(Scene)
- config.background_color = "#111827"
- Only Text(), Line(), Arrow(), Dot(), Circle(), NumberPlane(); no MathTex/Tex, no SVGs, no external assets, no complex updaters

=== OUTPUT: ONLY VALID JSON ===
{
  "problem_type": "<type>",
  "parameters": {"<name>": {"value": <number>, "unit": "<unit>", "symbol": "<symbol>"}},
  "equations": [{"label": "<label>", "formula": "<formula>"}],
  "explanation": [{"step": <number>, "text": "<text>"}],
  "key_results": {"<name>": {"value": <number>, "unit": "<unit>"}},
  "p5js_code": "<full p5.js sketch>",
  "manim_code": "<full Manim script, Text() only>"
}`

// BuildUserPrompt builds the generation prompt for a physics question
func BuildUserPrompt(question string) string {
	return fmt.Sprintf(`Physics Problem: %q

Analyze step by step:
1. Problem type and governing physics
2. Coordinate system (y-down for p5.js, y-up for Manim)
3. Parameters and solution

Then generate:
- p5.js simulation following the design system
- Manim animation (safe mode: no LaTeX, Text() only)

Output ONLY the JSON.`, question)
}

// BuildP5JSFixPrompt builds the repair prompt for a browser-reported p5.js error
func BuildP5JSFixPrompt(code, errMsg string) string {
	return fmt.Sprintf(`p5.js error: %s
CODE:
%s

Fix it. Ensure:
- predeclared variables (let x, y;)
- valid p5.js syntax
- design system preserved (colors, grid, shadows)
Return ONLY the fixed code.`, errMsg, code)
}

// BuildManimFixPrompt builds the repair prompt for a failed Manim render
func BuildManimFixPrompt(code, errMsg string) string {
	return fmt.Sprintf(`Manim error: %s
CODE:
%s

Fix it. Ensure:
- NO MathTex/Tex (use Text instead)
- correct imports
- class PhysicsScene(Scene)
Return ONLY the fixed code.`, errMsg, code)
}
