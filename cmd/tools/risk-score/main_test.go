package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const midpoint = `{
	"healthFactors": {"exerciseFrequency": 50, "sleepHours": 7, "stressLevel": 50,
		"alcoholConsumption": 50, "smokingStatus": 50, "dietQuality": 50, "medicalHistory": []},
	"financialFactors": {"monthlyIncome": 50000, "monthlyExpenses": 30000, "savingsRate": 50,
		"debtRatio": 50, "investmentKnowledge": 50, "emergencyFund": true, "creditScore": 700},
	"scamVulnerabilityFactors": {"technicalLiteracy": 50, "onlineActivityFrequency": 50,
		"publicPersonalInfo": 50, "passwordHygiene": 50, "verificationHabits": 50, "pastIncidents": 0}
}`

func TestRun_Stdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-compact"}, strings.NewReader(midpoint), &stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())

	var out output
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, 36, out.Scores.OverallRisk)
	assert.Equal(t, "moderate", string(out.Levels.Overall))
}

func TestRun_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(midpoint), 0o600))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-input", path}, strings.NewReader(""), &stdout, &stderr)

	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout.String(), `"healthRisk": 55`)
}

func TestRun_InvalidInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(nil, strings.NewReader(`{"healthFactors":{"sleepHours":30}}`), &stdout, &stderr)

	assert.Equal(t, exitInvalid, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "healthFactors.sleepHours [out_of_range]")
	assert.Contains(t, stderr.String(), "financialFactors [missing]")
}

func TestRun_MissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-input", filepath.Join(t.TempDir(), "nope.json")}, nil, &stdout, &stderr)
	assert.Equal(t, exitError, code)
}

func TestRun_BadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitError, run([]string{"-unknown"}, nil, &stdout, &stderr))
}
