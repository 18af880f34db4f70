package csvfile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"quizbank/pkg/domain"
)

const header = "Question,Answer,Option1,Option2,Option3,Category,Source\n"

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "database.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadMissingFileCreatesHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "database.csv")
	store := New(path)

	table, err := store.Read(context.Background())
	require.NoError(t, err)
	require.True(t, table.Created)
	require.Empty(t, table.Records)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "\xEF\xBB\xBF"+header, string(data))
}

func TestWriteReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New(filepath.Join(t.TempDir(), "db.csv"))
	records := []domain.Record{
		{Question: "What is 2+2?", Answer: "4", Option1: "3", Option2: "4", Option3: "5", Category: "Math", Source: "book"},
		{Question: "Quote \"this\", please", Answer: "line\nbreak", Category: "CS"},
		{Question: "پایتخت ایران کجاست؟", Answer: "تهران", Category: "جغرافیا"},
		{},
	}
	require.NoError(t, store.Write(ctx, records))

	table, err := store.Read(ctx)
	require.NoError(t, err)
	require.False(t, table.Created)
	require.Empty(t, table.Skipped)
	require.Equal(t, records, table.Records)
}

func TestReadMapsReorderedHeaderByName(t *testing.T) {
	path := writeFile(t, "source,category,Option3,Option2,Option1,answer,question\nbook,Math,5,4,3,4,What is 2+2?\n")

	table, err := New(path).Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, []domain.Record{{
		Question: "What is 2+2?", Answer: "4", Option1: "3", Option2: "4", Option3: "5", Category: "Math", Source: "book",
	}}, table.Records)
}

func TestReadHeaderlessLegacyFile(t *testing.T) {
	path := writeFile(t, "Q1,A1,,,,General,\nQ2,A2,x,y,z,CS,web\n")

	table, err := New(path).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, table.Records, 2)
	require.Equal(t, "Q1", table.Records[0].Question)
	require.Equal(t, "z", table.Records[1].Option3)
}

func TestReadSkipsMalformedRows(t *testing.T) {
	content := "\xEF\xBB\xBF" + header +
		"good one,a,,,,Math,\n" +
		"too,few,cells\n" +
		"bad,quo\"te,,,,Math,\n" +
		"good two,b,,,,CS,\n"
	path := writeFile(t, content)

	table, err := New(path).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, table.Records, 2)
	require.Equal(t, "good one", table.Records[0].Question)
	require.Equal(t, "good two", table.Records[1].Question)

	require.Len(t, table.Skipped, 2)
	require.Equal(t, 3, table.Skipped[0].Line)
	require.Equal(t, 4, table.Skipped[1].Line)
	for _, skipped := range table.Skipped {
		require.ErrorIs(t, skipped, domain.ErrParse)
	}
}

func TestReadRecoversAfterUnterminatedQuote(t *testing.T) {
	content := header +
		"Q1,A1,,,,Math,\n" +
		"\"Q2 never closed,A2,,,,Math,\n" +
		"Q3,A3,,,,CS,\n" +
		"\"Q4\nspans two lines\",A4,,,,CS,\n" +
		"\"Q5\"x,A5,,,,CS,\n" +
		"Q6,A6,,,,CS,\n"
	table, err := Decode(strings.NewReader(content))
	require.NoError(t, err)

	var questions []string
	for _, rec := range table.Records {
		questions = append(questions, rec.Question)
	}
	require.Equal(t, []string{"Q1", "Q3", "Q4\nspans two lines", "Q6"}, questions)

	require.Len(t, table.Skipped, 2)
	require.Equal(t, 3, table.Skipped[0].Line)
	require.Equal(t, 7, table.Skipped[1].Line)
}

func TestDecodeStripsBOM(t *testing.T) {
	table, err := Decode(strings.NewReader("\xEF\xBB\xBF" + header + "Q,A,,,,C,S\n"))
	require.NoError(t, err)
	require.Equal(t, []domain.Record{{Question: "Q", Answer: "A", Category: "C", Source: "S"}}, table.Records)
}

func TestEncodeWritesBOMAndHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, []domain.Record{{Question: "Q"}}))
	require.Equal(t, "\xEF\xBB\xBF"+header+"Q,,,,,,\n", buf.String())
}

func TestReadUnreadablePathIsIOError(t *testing.T) {
	dir := t.TempDir()
	// A directory cannot be decoded as a file.
	_, err := New(dir).Read(context.Background())
	require.ErrorIs(t, err, domain.ErrIO)
}

func TestWriteFailureLeavesPreviousFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "db.csv")
	store := New(path)
	require.NoError(t, store.Write(ctx, []domain.Record{{Question: "kept"}}))

	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	bad := New(filepath.Join(blocker, "db.csv"))
	err := bad.Write(ctx, nil)
	require.ErrorIs(t, err, domain.ErrIO)

	table, err := store.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.Record{{Question: "kept"}}, table.Records)
}

func TestDefaults(t *testing.T) {
	s := New("")
	require.Equal(t, "database.csv", s.Location())
	require.Equal(t, DriverName, s.Driver())
}
