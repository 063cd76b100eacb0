package bencode

import (
	"reflect"
	"testing"
)

func TestDecode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		data    string
		want    Value
		wantErr bool
	}{
		{
			name:    "empty input",
			data:    "",
			wantErr: true,
		},
		{
			name: "integer",
			data: "i45902e",
			want: Int(45902),
		},
		{
			name: "negative integer",
			data: "i-17e",
			want: Int(-17),
		},
		{
			name: "string",
			data: "5:hello",
			want: String("hello"),
		},
		{
			name: "binary string",
			data: "6:\x01\x02\x03\x04\x1a\xe1",
			want: String("\x01\x02\x03\x04\x1a\xe1"),
		},
		{
			name: "list",
			data: "li45902e5:helloe",
			want: List{Int(45902), String("hello")},
		},
		{
			name: "dict",
			data: "d5:helloi45902e5:world2:mee",
			want: Dict{"hello": Int(45902), "world": String("me")},
		},
		{
			name: "nested dict",
			data: "d5:peersld2:ip7:1.2.3.44:porti6881eeee",
			want: Dict{"peers": List{Dict{"ip": String("1.2.3.4"), "port": Int(6881)}}},
		},
		{
			name:    "string length beyond data",
			data:    "6:hello",
			wantErr: true,
		},
		{
			name:    "string without colon",
			data:    "5hello",
			wantErr: true,
		},
		{
			name:    "string length overflows int64",
			data:    "9223372036854775808:x",
			wantErr: true,
		},
		{
			name:    "string length overflows uint64",
			data:    "18446744073709551615:x",
			wantErr: true,
		},
		{
			name:    "huge string length nested in dict",
			data:    "d8:interval9223372036854775808:xe",
			wantErr: true,
		},
		{
			name:    "integer overflows int64",
			data:    "i99999999999999999999e",
			wantErr: true,
		},
		{
			name:    "integer not ended",
			data:    "i45",
			wantErr: true,
		},
		{
			name:    "list not ended",
			data:    "li42ei22e",
			wantErr: true,
		},
		{
			name:    "dict not ended",
			data:    "d5:firsti45e",
			wantErr: true,
		},
		{
			name:    "trailing data",
			data:    "i45ei46e",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Decode([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode() = %#v, want %#v", got, tt.want)
			}
		})
	}
}
