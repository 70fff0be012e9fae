package extraction

const promptTemplate = `You are an assistant that extracts structured data from weekly sports betting ROI PDF reports.
Return a JSON object with the following structure:
{
  "report": {
    "label": string,
    "reportDate": "YYYY-MM-DD" | null,
    "scope": string | null,
    "totalWagered": number,
    "totalReturn": number,
    "netProfit": number,
    "roiPercent": number,
    "hitRate": number | null,
    "summary": string | null
  },
  "bets": [
    {
      "title": string,
      "status": "won" | "lost" | "push" | "void",
      "stake": number | null,
      "odds": string | null,
      "eventDate": string | null,
      "category": string | null,
      "resultNotes": string | null
    }
  ],
  "notes": string | null
}
- Parse monetary and percentage values into numbers without currency symbols.
- reportDate must be ISO format (YYYY-MM-DD) when the document provides a clear date.
- Only include bets with a clearly identified result (won/lost/push/void).
- Use concise summaries (<= 2 sentences).
- If a field is missing in the PDF, return null for that field.
File name: `

func buildPrompt(fileName string) string {
	return promptTemplate + fileName
}
