package formparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/formfill-backend/internal/model"
)

func TestParseManual(t *testing.T) {
	text := `1. Siapa presiden pertama Indonesia?
a. Soekarno
b. Soeharto
c. Habibie
d. Gus Dur

2) Tahun berapa Indonesia
merdeka?
A) 1945
B) 1946

3. Jelaskan arti Bhinneka Tunggal Ika
4. Pilih satu
a. Ya`

	got := ParseManual(text)
	require.Len(t, got, 4)

	assert.Equal(t, "q1", got[0].ID)
	assert.Equal(t, "Siapa presiden pertama Indonesia?", got[0].Text)
	assert.Equal(t, model.QuestionKindMultipleChoice, got[0].Kind)
	assert.Equal(t, []string{"Soekarno", "Soeharto", "Habibie", "Gus Dur"}, got[0].Options)
	assert.True(t, got[0].Required)

	assert.Equal(t, "Tahun berapa Indonesia merdeka?", got[1].Text)
	assert.Equal(t, []string{"1945", "1946"}, got[1].Options)

	assert.Equal(t, model.QuestionKindFreeText, got[2].Kind)
	assert.Empty(t, got[2].Options)

	assert.Equal(t, model.QuestionKindFreeText, got[3].Kind, "a single option cannot make a choice question")
	assert.Empty(t, got[3].Options)
}

func TestParseManual_IgnoresTextBeforeFirstNumber(t *testing.T) {
	got := ParseManual("Kerjakan dengan jujur\na. bukan opsi\n1. Ibu kota Jepang?\na. Tokyo\nb. Osaka")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Tokyo", "Osaka"}, got[0].Options)
}

func TestParseManual_Empty(t *testing.T) {
	got := ParseManual("   \n\n")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
