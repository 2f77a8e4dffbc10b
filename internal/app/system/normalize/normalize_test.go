package normalize

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"email lowercased", Email, " Linh@Shop.VN ", "linh@shop.vn"},
		{"email blank", Email, "\t\n", ""},

		{"name trimmed", Name, "  Trần Bình  ", "Trần Bình"},
		{"name inner runs collapsed", Name, "iPhone   15\tPro  Max", "iPhone 15 Pro Max"},
		{"name keeps case", Name, "NGUYỄN VĂN LINH", "NGUYỄN VĂN LINH"},
		{"name blank", Name, "   ", ""},

		{"role lowercased", Role, " Staff ", "staff"},
		{"role unknown kept", Role, "Owner", "owner"},

		{"phone digits", Phone, "0901234567", "0901234567"},
		{"phone spaces", Phone, "090 123 4567", "0901234567"},
		{"phone dashes", Phone, "090-123-4567", "0901234567"},
		{"phone dots", Phone, "090.123.4567", "0901234567"},
		{"phone country code", Phone, " +84 90 123 4567 ", "+84901234567"},
		{"phone inner plus dropped", Phone, "09+01", "0901"},
		{"phone letters dropped", Phone, "call 0901", "0901"},
		{"phone blank", Phone, "", ""},

		{"query trimmed", QueryParam, "  le an ", "le an"},
		{"query keeps case", QueryParam, "NGUYỄN", "NGUYỄN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
