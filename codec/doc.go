// Package codec provides ready-made field codecs for the "with" directive.
//
// Importing the package registers them by name for struct tags and schema
// files:
//
//	rfc3339    time.Time <-> RFC 3339 text (UTC, nanosecond precision)
//	unix_time  time.Time <-> integer seconds since the Unix epoch
//	byte_seq   []byte or [N]byte <-> the format's byte string
//	text       encoding.TextMarshaler <-> text string
package codec

import idxcodec "github.com/reoring/idxcodec"

func init() {
	idxcodec.RegisterFieldCodec("rfc3339", TimeRFC3339())
	idxcodec.RegisterFieldCodec("unix_time", UnixTime())
	idxcodec.RegisterFieldCodec("byte_seq", ByteSeq())
	idxcodec.RegisterFieldCodec("text", Text())
}

func typeIssue(msg string, cause error) error {
	return idxcodec.Issues{{Code: idxcodec.CodeInvalidType, Message: msg, Cause: cause}}
}
