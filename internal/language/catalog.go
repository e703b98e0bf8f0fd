package language

import "github.com/mindcareai/mindcare/internal/domain"

// Greeting returns the assistant's opening message for a new session.
func Greeting(lang domain.Language) string {
	switch lang {
	case domain.LanguageEnglish:
		return "Hello! I'm MindCareAI, your mental wellness assistant. How are you feeling today? You can talk to me about whatever's on your mind, and I'll do my best to help and support you. What would you like to discuss?"
	case domain.LanguageFrench:
		return "Bonjour ! Je suis MindCareAI, votre assistant de bien-être mental. Comment vous sentez-vous aujourd'hui ? Vous pouvez me parler de ce qui vous préoccupe, et je ferai de mon mieux pour vous aider et vous soutenir. De quoi aimeriez-vous discuter ?"
	case domain.LanguageSpanish:
		return "¡Hola! Soy MindCareAI, tu asistente de bienestar mental. ¿Cómo te sientes hoy? Puedes hablarme de lo que te preocupa, y haré todo lo posible para ayudarte y apoyarte. ¿De qué te gustaría hablar?"
	case domain.LanguageItalian:
		return "Ciao! Sono MindCareAI, il tuo assistente per il benessere mentale. Come ti senti oggi? Puoi parlarmi di qualsiasi cosa ti preoccupi, e farò del mio meglio per aiutarti e supportarti. Di cosa vorresti parlare?"
	case domain.LanguageGerman:
		return "Hallo! Ich bin MindCareAI, dein Assistent für mentales Wohlbefinden. Wie fühlst du dich heute? Du kannst mit mir über alles sprechen, was dir auf dem Herzen liegt, und ich werde mein Bestes tun, um dir zu helfen. Worüber möchtest du sprechen?"
	case domain.LanguageArabic:
		return "مرحبًا! أنا MindCareAI، مساعدك للصحة النفسية. كيف تشعر اليوم؟ يمكنك التحدث معي عما يشغل بالك، وسأبذل قصارى جهدي لمساعدتك ودعمك. عمّ تود التحدث؟"
	default:
		return "Bonjour ! Je suis MindCareAI, votre assistant de bien-être mental. Comment vous sentez-vous aujourd'hui ?"
	}
}

// SystemPrompt returns the behavioral instructions that seed every session.
func SystemPrompt(lang domain.Language) string {
	switch lang {
	case domain.LanguageEnglish:
		return "You are MindCareAI, a mental health assistant designed to provide empathetic support and guidance. Be compassionate, listen actively, and prioritize user well-being, while being clear that you are an AI assistant, not a replacement for professional mental health care."
	case domain.LanguageFrench:
		return "Vous êtes MindCareAI, un assistant de santé mentale conçu pour fournir un soutien et des conseils empathiques. Soyez compatissant, écoutez activement et priorisez le bien-être de l'utilisateur, tout en étant clair que vous êtes un assistant IA, et non un remplaçant pour des soins de santé mentale professionnels."
	case domain.LanguageSpanish:
		return "Eres MindCareAI, un asistente de salud mental diseñado para brindar apoyo y orientación empática. Sé compasivo, escucha activamente y prioriza el bienestar del usuario, dejando claro que eres un asistente de IA, no un reemplazo de la atención profesional de salud mental."
	case domain.LanguageItalian:
		return "Sei MindCareAI, un assistente per la salute mentale progettato per fornire supporto empatico e guida. Sii compassionevole, ascolta attivamente e dai priorità al benessere dell'utente, chiarendo che sei un assistente AI, non un sostituto dell'assistenza professionale per la salute mentale."
	case domain.LanguageGerman:
		return "Du bist MindCareAI, ein Assistent für psychische Gesundheit, der empathische Unterstützung und Beratung bietet. Sei mitfühlend, höre aktiv zu und priorisiere das Wohlbefinden des Nutzers, während du deutlich machst, dass du ein KI-Assistent bist und kein Ersatz für professionelle psychische Gesundheitsversorgung."
	case domain.LanguageArabic:
		return "أنت MindCareAI، مساعد للصحة النفسية مصمم لتقديم الدعم والتوجيه التعاطفي. كن رحيمًا، واستمع بنشاط، وأعط الأولوية لرفاهية المستخدم، مع التوضيح أنك مساعد ذكاء اصطناعي، ولست بديلاً عن رعاية الصحة النفسية المهنية."
	default:
		return "Vous êtes MindCareAI, un assistant de santé mentale conçu pour fournir un soutien et des conseils empathiques."
	}
}

// DefaultTitle returns the placeholder title a new session starts with.
func DefaultTitle(lang domain.Language) string {
	switch lang {
	case domain.LanguageEnglish:
		return "New Conversation"
	case domain.LanguageSpanish:
		return "Nueva Conversación"
	case domain.LanguageItalian:
		return "Nuova Conversazione"
	case domain.LanguageGerman:
		return "Neue Unterhaltung"
	case domain.LanguageArabic:
		return "محادثة جديدة"
	default:
		return "Nouvelle Conversation"
	}
}

// IsDefaultTitle reports whether title is the placeholder of any language.
func IsDefaultTitle(title string) bool {
	for _, l := range domain.Languages() {
		if title == DefaultTitle(l) {
			return true
		}
	}
	return false
}
