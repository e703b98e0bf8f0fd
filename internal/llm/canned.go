package llm

import (
	"context"
	"strings"
	"time"

	"github.com/mindcareai/mindcare/internal/domain"
	"github.com/mindcareai/mindcare/internal/logging"
)

// DefaultLatency is the simulated response time of the canned engine.
const DefaultLatency = time.Second

type cannedRule struct {
	keywords []string
	reply    string
}

type cannedTable struct {
	rules    []cannedRule
	fallback string
}

// CannedClient answers from a fixed keyword table per language. The first
// rule with a keyword contained in the lowercased last message wins.
type CannedClient struct {
	latency time.Duration
	log     *logging.Logger
}

// NewCannedClient creates the reference engine. A zero latency replies immediately.
func NewCannedClient(latency time.Duration, log *logging.Logger) *CannedClient {
	return &CannedClient{latency: latency, log: log.Sub("llm.canned")}
}

func (c *CannedClient) Name() string { return "canned" }

func (c *CannedClient) Reply(ctx context.Context, history []domain.Message, lang domain.Language) (string, error) {
	if c.latency > 0 {
		timer := time.NewTimer(c.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	if len(history) == 0 {
		return "", &ProviderError{Provider: c.Name(), Message: "empty history"}
	}

	text := strings.ToLower(history[len(history)-1].Content)
	table := cannedFor(lang)
	for _, rule := range table.rules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				c.log.Debug().Str("language", string(lang)).Str("keyword", kw).Msg("canned rule matched")
				return rule.reply, nil
			}
		}
	}
	return table.fallback, nil
}

func cannedFor(lang domain.Language) cannedTable {
	switch lang {
	case domain.LanguageEnglish:
		return englishReplies
	case domain.LanguageSpanish:
		return spanishReplies
	case domain.LanguageItalian:
		return italianReplies
	case domain.LanguageGerman:
		return germanReplies
	case domain.LanguageArabic:
		return arabicReplies
	default:
		return frenchReplies
	}
}

var frenchReplies = cannedTable{
	rules: []cannedRule{
		{[]string{"bonjour", "salut"}, "Bonjour ! Comment vous sentez-vous aujourd'hui ? Je suis là pour vous écouter et vous soutenir."},
		{[]string{"triste", "déprimé"}, "Je suis désolé d'apprendre que vous vous sentez mal. Voulez-vous parler de ce qui vous préoccupe ? Rappelez-vous qu'il est normal de ne pas se sentir bien parfois, et le fait de tendre la main est un premier pas courageux."},
		{[]string{"anxieux", "stressé"}, "L'anxiété est courante. Essayons de comprendre ce qui cause ces sentiments. Cela vous aiderait-il de prendre quelques respirations profondes ensemble ? Inspirez pendant 4 temps, retenez pendant 4, et expirez pendant 6. Cela peut aider à calmer votre système nerveux."},
		{[]string{"heureux", "bien"}, "Je suis content d'apprendre que vous allez bien ! Quelles choses positives se sont produites récemment dans votre vie ? Célébrer les petites victoires est important pour notre bien-être mental."},
		{[]string{"merci"}, "Je vous en prie. Je suis là pour vous soutenir chaque fois que vous avez besoin de quelqu'un à qui parler. Votre santé mentale est importante."},
	},
	fallback: "Merci de partager cela avec moi. Comment cette situation vous fait-elle vous sentir ? Comprendre nos émotions est une étape importante pour le bien-être mental. Je suis là pour vous écouter et vous aider à traiter ces sentiments.",
}

var englishReplies = cannedTable{
	rules: []cannedRule{
		{[]string{"hello", "hi"}, "Hello! How are you feeling today? I'm here to listen and support you."},
		{[]string{"sad", "depressed"}, "I'm sorry to hear you're feeling down. Would you like to talk about what's troubling you? Remember that it's okay to not be okay sometimes, and reaching out is a brave first step."},
		{[]string{"anxious", "stressed"}, "Feeling anxious is common. Let's try to understand what's causing these feelings. Would it help to take a few deep breaths together? Breathe in for 4 counts, hold for 4, and exhale for 6. This can help calm your nervous system."},
		{[]string{"happy", "good"}, "I'm glad to hear you're doing well! What positive things have been happening in your life recently? Celebrating small victories is important for our mental wellbeing."},
		{[]string{"thank"}, "You're welcome. I'm here to support you whenever you need someone to talk to. Your mental health matters."},
	},
	fallback: "Thank you for sharing that with me. How does this situation make you feel? Understanding our emotions is an important step in mental wellness. I'm here to listen and help you process these feelings.",
}

var spanishReplies = cannedTable{
	rules: []cannedRule{
		{[]string{"hola", "buenos días"}, "¡Hola! ¿Cómo te sientes hoy? Estoy aquí para escucharte y apoyarte."},
		{[]string{"triste", "deprimido"}, "Siento que te sientas mal. ¿Quieres hablar de lo que te preocupa? Recuerda que está bien no estar bien a veces, y pedir ayuda es un primer paso valiente."},
		{[]string{"ansioso", "estresado"}, "La ansiedad es común. Intentemos entender qué causa estos sentimientos. ¿Te ayudaría respirar profundamente conmigo? Inhala durante 4 tiempos, mantén 4 y exhala durante 6."},
		{[]string{"feliz", "bien"}, "¡Me alegra saber que estás bien! ¿Qué cosas positivas te han pasado últimamente? Celebrar las pequeñas victorias es importante para nuestro bienestar mental."},
		{[]string{"gracias"}, "De nada. Estoy aquí para apoyarte siempre que necesites hablar con alguien. Tu salud mental importa."},
	},
	fallback: "Gracias por compartir esto conmigo. ¿Cómo te hace sentir esta situación? Entender nuestras emociones es un paso importante para el bienestar mental.",
}

var italianReplies = cannedTable{
	rules: []cannedRule{
		{[]string{"ciao", "buongiorno"}, "Ciao! Come ti senti oggi? Sono qui per ascoltarti e sostenerti."},
		{[]string{"triste", "depresso"}, "Mi dispiace che tu ti senta giù. Vuoi parlare di ciò che ti preoccupa? Ricorda che va bene non stare bene a volte, e chiedere aiuto è un primo passo coraggioso."},
		{[]string{"ansioso", "stressato"}, "L'ansia è comune. Cerchiamo di capire cosa causa queste sensazioni. Ti aiuterebbe fare qualche respiro profondo insieme? Inspira per 4 tempi, trattieni per 4 ed espira per 6."},
		{[]string{"felice", "bene"}, "Sono contento di sapere che stai bene! Quali cose positive sono successe di recente nella tua vita? Celebrare le piccole vittorie è importante per il nostro benessere mentale."},
		{[]string{"grazie"}, "Prego. Sono qui per sostenerti ogni volta che hai bisogno di parlare con qualcuno. La tua salute mentale è importante."},
	},
	fallback: "Grazie per aver condiviso questo con me. Come ti fa sentire questa situazione? Comprendere le nostre emozioni è un passo importante per il benessere mentale.",
}

var germanReplies = cannedTable{
	rules: []cannedRule{
		{[]string{"hallo", "guten tag"}, "Hallo! Wie fühlst du dich heute? Ich bin hier, um dir zuzuhören und dich zu unterstützen."},
		{[]string{"traurig", "deprimiert"}, "Es tut mir leid, dass es dir nicht gut geht. Möchtest du darüber sprechen, was dich bedrückt? Es ist in Ordnung, nicht immer in Ordnung zu sein, und sich Hilfe zu suchen ist ein mutiger erster Schritt."},
		{[]string{"ängstlich", "gestresst"}, "Angst ist weit verbreitet. Lass uns verstehen, was diese Gefühle auslöst. Würde es helfen, gemeinsam tief durchzuatmen? Atme 4 Takte ein, halte 4 und atme 6 Takte aus."},
		{[]string{"glücklich", "gut"}, "Schön zu hören, dass es dir gut geht! Was ist in letzter Zeit Positives in deinem Leben passiert? Kleine Erfolge zu feiern ist wichtig für unser seelisches Wohlbefinden."},
		{[]string{"danke"}, "Gern geschehen. Ich bin für dich da, wann immer du jemanden zum Reden brauchst. Deine psychische Gesundheit ist wichtig."},
	},
	fallback: "Danke, dass du das mit mir teilst. Wie fühlst du dich in dieser Situation? Unsere Gefühle zu verstehen ist ein wichtiger Schritt für das seelische Wohlbefinden.",
}

var arabicReplies = cannedTable{
	rules: []cannedRule{
		{[]string{"مرحبا", "السلام"}, "مرحبًا! كيف تشعر اليوم؟ أنا هنا للاستماع إليك ودعمك."},
		{[]string{"حزين", "مكتئب"}, "يؤسفني أنك تشعر بالضيق. هل تود التحدث عما يزعجك؟ تذكر أنه من الطبيعي ألا تكون بخير أحيانًا، وطلب المساعدة خطوة أولى شجاعة."},
		{[]string{"قلق", "متوتر"}, "القلق شائع. لنحاول فهم ما يسبب هذه المشاعر. هل يساعدك أن نأخذ بعض الأنفاس العميقة معًا؟ استنشق لمدة 4، واحبس لمدة 4، وازفر لمدة 6."},
		{[]string{"سعيد", "بخير"}, "يسعدني أنك بخير! ما الأشياء الإيجابية التي حدثت في حياتك مؤخرًا؟ الاحتفال بالانتصارات الصغيرة مهم لصحتنا النفسية."},
		{[]string{"شكرا"}, "على الرحب والسعة. أنا هنا لدعمك كلما احتجت إلى من تتحدث إليه. صحتك النفسية مهمة."},
	},
	fallback: "شكرًا لمشاركتي ذلك. كيف يجعلك هذا الموقف تشعر؟ فهم مشاعرنا خطوة مهمة نحو الصحة النفسية.",
}
