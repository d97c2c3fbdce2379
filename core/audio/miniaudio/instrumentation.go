package miniaudio

import "go.opentelemetry.io/contrib/bridges/otelslog"

const scopeName = "github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/audio/miniaudio"

var logger = otelslog.NewLogger(scopeName)
