package notify

import "github.com/mindcareai/mindcare/internal/domain"

var english = map[Key]string{
	KeyVoiceUnavailable:        "Speech recognition is not supported in this browser.",
	KeyVoiceStartFailed:        "Could not start voice input. Please try again.",
	KeyVoiceReconnecting:       "Connection lost. Reconnecting voice input...",
	KeyVoiceReconnectExhausted: "Voice input stopped after several failed reconnection attempts.",
	KeyVoiceRecognitionError:   "Voice input stopped because of a recognition error.",
	KeyChatReplyFailed:         "The assistant could not reply. Please try again.",
	KeyAuthLoginSuccess:        "Welcome back!",
	KeyAuthRegisterSuccess:     "Account created successfully.",
	KeyAuthMissingFields:       "Please fill in all fields.",
	KeyAuthPasswordMismatch:    "Passwords do not match.",
	KeyAuthFailed:              "Authentication failed. Please try again.",
}

var french = map[Key]string{
	KeyVoiceUnavailable:        "La reconnaissance vocale n'est pas prise en charge par ce navigateur.",
	KeyVoiceStartFailed:        "Impossible de démarrer la saisie vocale. Veuillez réessayer.",
	KeyVoiceReconnecting:       "Connexion perdue. Reconnexion de la saisie vocale...",
	KeyVoiceReconnectExhausted: "La saisie vocale s'est arrêtée après plusieurs tentatives de reconnexion.",
	KeyVoiceRecognitionError:   "La saisie vocale s'est arrêtée suite à une erreur de reconnaissance.",
	KeyChatReplyFailed:         "L'assistant n'a pas pu répondre. Veuillez réessayer.",
	KeyAuthLoginSuccess:        "Bon retour parmi nous !",
	KeyAuthRegisterSuccess:     "Compte créé avec succès.",
	KeyAuthMissingFields:       "Veuillez remplir tous les champs.",
	KeyAuthPasswordMismatch:    "Les mots de passe ne correspondent pas.",
	KeyAuthFailed:              "L'authentification a échoué. Veuillez réessayer.",
}

var spanish = map[Key]string{
	KeyVoiceUnavailable:        "El reconocimiento de voz no es compatible con este navegador.",
	KeyVoiceStartFailed:        "No se pudo iniciar la entrada de voz. Inténtalo de nuevo.",
	KeyVoiceReconnecting:       "Conexión perdida. Reconectando la entrada de voz...",
	KeyVoiceReconnectExhausted: "La entrada de voz se detuvo tras varios intentos de reconexión.",
	KeyVoiceRecognitionError:   "La entrada de voz se detuvo por un error de reconocimiento.",
	KeyChatReplyFailed:         "El asistente no pudo responder. Inténtalo de nuevo.",
	KeyAuthLoginSuccess:        "¡Bienvenido de nuevo!",
	KeyAuthRegisterSuccess:     "Cuenta creada con éxito.",
	KeyAuthMissingFields:       "Por favor, completa todos los campos.",
	KeyAuthPasswordMismatch:    "Las contraseñas no coinciden.",
	KeyAuthFailed:              "La autenticación falló. Inténtalo de nuevo.",
}

var italian = map[Key]string{
	KeyVoiceUnavailable:        "Il riconoscimento vocale non è supportato da questo browser.",
	KeyVoiceStartFailed:        "Impossibile avviare l'input vocale. Riprova.",
	KeyVoiceReconnecting:       "Connessione persa. Riconnessione dell'input vocale...",
	KeyVoiceReconnectExhausted: "L'input vocale si è interrotto dopo diversi tentativi di riconnessione.",
	KeyVoiceRecognitionError:   "L'input vocale si è interrotto per un errore di riconoscimento.",
	KeyChatReplyFailed:         "L'assistente non è riuscito a rispondere. Riprova.",
	KeyAuthLoginSuccess:        "Bentornato!",
	KeyAuthRegisterSuccess:     "Account creato con successo.",
	KeyAuthMissingFields:       "Compila tutti i campi.",
	KeyAuthPasswordMismatch:    "Le password non corrispondono.",
	KeyAuthFailed:              "Autenticazione non riuscita. Riprova.",
}

var german = map[Key]string{
	KeyVoiceUnavailable:        "Spracherkennung wird von diesem Browser nicht unterstützt.",
	KeyVoiceStartFailed:        "Spracheingabe konnte nicht gestartet werden. Bitte erneut versuchen.",
	KeyVoiceReconnecting:       "Verbindung verloren. Spracheingabe wird neu verbunden...",
	KeyVoiceReconnectExhausted: "Die Spracheingabe wurde nach mehreren Verbindungsversuchen beendet.",
	KeyVoiceRecognitionError:   "Die Spracheingabe wurde wegen eines Erkennungsfehlers beendet.",
	KeyChatReplyFailed:         "Der Assistent konnte nicht antworten. Bitte erneut versuchen.",
	KeyAuthLoginSuccess:        "Willkommen zurück!",
	KeyAuthRegisterSuccess:     "Konto erfolgreich erstellt.",
	KeyAuthMissingFields:       "Bitte alle Felder ausfüllen.",
	KeyAuthPasswordMismatch:    "Die Passwörter stimmen nicht überein.",
	KeyAuthFailed:              "Anmeldung fehlgeschlagen. Bitte erneut versuchen.",
}

var arabic = map[Key]string{
	KeyVoiceUnavailable:        "التعرف على الكلام غير مدعوم في هذا المتصفح.",
	KeyVoiceStartFailed:        "تعذر بدء الإدخال الصوتي. يرجى المحاولة مرة أخرى.",
	KeyVoiceReconnecting:       "انقطع الاتصال. جارٍ إعادة توصيل الإدخال الصوتي...",
	KeyVoiceReconnectExhausted: "توقف الإدخال الصوتي بعد عدة محاولات فاشلة لإعادة الاتصال.",
	KeyVoiceRecognitionError:   "توقف الإدخال الصوتي بسبب خطأ في التعرف.",
	KeyChatReplyFailed:         "تعذر على المساعد الرد. يرجى المحاولة مرة أخرى.",
	KeyAuthLoginSuccess:        "مرحبًا بعودتك!",
	KeyAuthRegisterSuccess:     "تم إنشاء الحساب بنجاح.",
	KeyAuthMissingFields:       "يرجى ملء جميع الحقول.",
	KeyAuthPasswordMismatch:    "كلمتا المرور غير متطابقتين.",
	KeyAuthFailed:              "فشلت المصادقة. يرجى المحاولة مرة أخرى.",
}

func table(lang domain.Language) map[Key]string {
	switch lang {
	case domain.LanguageEnglish:
		return english
	case domain.LanguageSpanish:
		return spanish
	case domain.LanguageItalian:
		return italian
	case domain.LanguageGerman:
		return german
	case domain.LanguageArabic:
		return arabic
	default:
		return french
	}
}

// Text returns the message for key in lang. Unknown keys render as the key itself.
func Text(lang domain.Language, key Key) string {
	if s, ok := table(lang)[key]; ok {
		return s
	}
	if s, ok := french[key]; ok {
		return s
	}
	return string(key)
}
