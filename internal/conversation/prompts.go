package conversation

import "fmt"

// Greeting seeds every simulator session.
const Greeting = "Namaste! Welcome to Adarsh Realtor. How can I help you find your dream property today?"

// ErrorNotice replaces the model reply when the backend call fails.
const ErrorNotice = "⚠️ Error connecting to AI. Check API Key."

// SetupPrompt is shown instead of a session when no API key is configured.
const SetupPrompt = "Please enter your Gemini API Key in Settings to start the simulator."

// SystemInstruction is the realtor assistant persona.
const SystemInstruction = `You are the AI Assistant for "Adarsh Realtor".
Your goal is to politely and professionally converse with potential real estate clients on Instagram.
You must collect the following information naturally:
1. Name
2. Phone Number
3. Property Requirement (e.g., Buying/Renting, Budget, Location, BHK)

Tone: Professional, Warm, Helpful. You can use Hinglish (Hindi + English) if the user speaks it.
Constraints: Keep messages short (under 50 words) like a text message.
Do not ask for all details at once. Ask one question at a time.
Once you have the Name, Phone, and Requirement, politely thank them and say a team member will call them shortly.`

const extractionPromptTemplate = `Analyze the following chat history between Adarsh Realtor Bot and a User.
Extract the User's Name, Phone Number, and Property Requirement.
If a piece of information is missing, return null for that field.

Chat History:
%s`

func extractionPrompt(transcript string) string {
	return fmt.Sprintf(extractionPromptTemplate, transcript)
}

// leadSchema is the structured response the extraction call is constrained to.
var leadSchema = []SchemaProperty{
	{Name: "name", Type: SchemaString, Nullable: true},
	{Name: "phone", Type: SchemaString, Nullable: true},
	{Name: "requirement", Type: SchemaString, Nullable: true},
	{Name: "isComplete", Type: SchemaBoolean, Description: "True if all 3 fields are present"},
}
