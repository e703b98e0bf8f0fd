package notify

import (
	"sync"
	"testing"

	"github.com/mindcareai/mindcare/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []Key{
	KeyVoiceUnavailable,
	KeyVoiceStartFailed,
	KeyVoiceReconnecting,
	KeyVoiceReconnectExhausted,
	KeyVoiceRecognitionError,
	KeyChatReplyFailed,
	KeyAuthLoginSuccess,
	KeyAuthRegisterSuccess,
	KeyAuthMissingFields,
	KeyAuthPasswordMismatch,
	KeyAuthFailed,
}

func TestCatalogComplete(t *testing.T) {
	for _, l := range domain.Languages() {
		tbl := table(l)
		for _, k := range allKeys {
			assert.NotEmpty(t, tbl[k], "%s missing %s", l, k)
		}
		assert.Len(t, tbl, len(allKeys), string(l))
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, "Passwords do not match.", Text(domain.LanguageEnglish, KeyAuthPasswordMismatch))
	assert.Equal(t, "Les mots de passe ne correspondent pas.", Text(domain.LanguageFrench, KeyAuthPasswordMismatch))
}

func TestText_UnknownLanguageFallsBackToFrench(t *testing.T) {
	assert.Equal(t, french[KeyChatReplyFailed], Text(domain.Language("xx-XX"), KeyChatReplyFailed))
}

func TestText_UnknownKey(t *testing.T) {
	assert.Equal(t, "nope.key", Text(domain.LanguageEnglish, Key("nope.key")))
}

func TestNotificationText(t *testing.T) {
	n := Notification{Severity: SeverityError, Language: domain.LanguageGerman, Key: KeyVoiceStartFailed}
	assert.Equal(t, german[KeyVoiceStartFailed], n.Text())
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Notify(Notification{Key: KeyVoiceUnavailable})
	r.Notify(Notification{Key: KeyVoiceStartFailed})

	assert.Equal(t, []Key{KeyVoiceUnavailable, KeyVoiceStartFailed}, r.Keys())
	all := r.All()
	require.Len(t, all, 2)

	all[0].Key = "mutated"
	assert.Equal(t, KeyVoiceUnavailable, r.All()[0].Key, "All must return a copy")
}

func TestRecorder_Concurrent(t *testing.T) {
	var r Recorder
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Notify(Notification{Key: KeyChatReplyFailed})
		}()
	}
	wg.Wait()
	assert.Len(t, r.All(), 20)
}

func TestFanout(t *testing.T) {
	var a, b Recorder
	f := Fanout{&a, nil, &b}
	f.Notify(Notification{Key: KeyAuthFailed})

	assert.Equal(t, []Key{KeyAuthFailed}, a.Keys())
	assert.Equal(t, []Key{KeyAuthFailed}, b.Keys())
}

func TestDiscard(t *testing.T) {
	Discard.Notify(Notification{Key: KeyAuthFailed})
}
