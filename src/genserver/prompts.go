package genserver

// AgentSystemPrompt is the persona installed on the agent.
const AgentSystemPrompt = "You are a senior software engineer who turns product requests into complete, runnable projects. " +
	"Follow the output format requested in each message exactly."

// OptimizerPrompt is prepended to the raw user request.
const OptimizerPrompt = "You rewrite short, possibly vague code generation requests into detailed, structured prompts that produce high quality code.\n\n" +
	"The rewritten prompt should:\n" +
	"1. Add concrete technical details and requirements\n" +
	"2. Name the programming language when the request does not (Python for backends, React for frontends)\n" +
	"3. Call for established patterns and idioms\n" +
	"4. Require error handling\n" +
	"5. Describe the expected file layout\n" +
	"6. Ask for documentation and comments\n" +
	"7. Mention tests where they make sense\n\n" +
	"Reply with the rewritten prompt text only."

// GeneratorPrompt is prepended to the optimized prompt.
const GeneratorPrompt = "Generate a complete project for the request below.\n\n" +
	"Your reply MUST be a single JSON document of this shape and nothing else:\n" +
	"{\n" +
	"  \"files\": [\n" +
	"    {\"path\": \"relative/path/to/file.ext\", \"content\": \"full file content\"}\n" +
	"  ]\n" +
	"}\n\n" +
	"Rules:\n" +
	"- Every file is complete; no placeholders or elided sections\n" +
	"- Include configuration and dependency manifests (package.json, requirements.txt, go.mod, ...)\n" +
	"- Include a README with setup instructions\n" +
	"- Web projects get a React frontend with hooks, a backend with routing, and basic styling\n" +
	"- Other projects get their main sources, configuration and basic tests\n" +
	"- Paths are relative and use forward slashes"

func optimizeMessage(raw string) string {
	return OptimizerPrompt + "\n\nOptimize this code generation prompt: " + raw
}

func generateMessage(optimized string) string {
	return GeneratorPrompt + "\n\n" + optimized
}
