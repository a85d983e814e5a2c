package checkpoint

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "profile only",
			key:  Key{ProfileID: "12345"},
			want: "wise:activities:12345",
		},
		{
			name: "single filter",
			key: Key{
				ProfileID: "12345",
				Filters:   url.Values{"status": []string{"COMPLETED"}},
			},
			want: "wise:activities:12345:status=COMPLETED",
		},
		{
			name: "filters sorted",
			key: Key{
				ProfileID: "12345",
				Filters: url.Values{
					"until":  []string{"2024-01-31T23:59:59Z"},
					"size":   []string{"50"},
					"status": []string{"COMPLETED"},
				},
			},
			want: "wise:activities:12345:size=50:status=COMPLETED:until=2024-01-31T23%3A59%3A59Z",
		},
		{
			name: "cursor ignored",
			key: Key{
				ProfileID: "12345",
				Filters: url.Values{
					"status":     []string{"COMPLETED"},
					"nextCursor": []string{"abc"},
				},
			},
			want: "wise:activities:12345:status=COMPLETED",
		},
		{
			name: "multi value sorted",
			key: Key{
				ProfileID: "1",
				Filters:   url.Values{"status": []string{"PENDING", "COMPLETED"}},
			},
			want: "wise:activities:1:status=COMPLETED,PENDING",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("Key.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_StringDeterministic(t *testing.T) {
	key := Key{
		ProfileID: "12345",
		Filters: url.Values{
			"param_z": []string{"z"},
			"param_a": []string{"a"},
			"param_m": []string{"m"},
		},
	}

	first := key.String()
	for i := 0; i < 100; i++ {
		if got := key.String(); got != first {
			t.Fatalf("Key.String() not deterministic: %q vs %q", got, first)
		}
	}
}

func TestKey_StringDoesNotMutateFilters(t *testing.T) {
	filters := url.Values{"status": []string{"PENDING", "COMPLETED"}}
	_ = Key{ProfileID: "1", Filters: filters}.String()

	if filters["status"][0] != "PENDING" {
		t.Error("Key.String() reordered the caller's filter values")
	}
}

func TestKey_StringSeparatorsEscaped(t *testing.T) {
	tests := []struct {
		name string
		a, b url.Values
	}{
		{
			name: "colon in value",
			a:    url.Values{"a": []string{"x:b=y"}},
			b:    url.Values{"a": []string{"x"}, "b": []string{"y"}},
		},
		{
			name: "comma in value",
			a:    url.Values{"status": []string{"a,b"}},
			b:    url.Values{"status": []string{"a", "b"}},
		},
		{
			name: "equals in name",
			a:    url.Values{"a=b": []string{"c"}},
			b:    url.Values{"a": []string{"b=c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka := Key{ProfileID: "1", Filters: tt.a}.String()
			kb := Key{ProfileID: "1", Filters: tt.b}.String()
			if ka == kb {
				t.Errorf("distinct filters share key %q", ka)
			}
		})
	}

	if got := (Key{ProfileID: "1:2"}).String(); got != "wise:activities:1%3A2" {
		t.Errorf("Key.String() = %q", got)
	}
}
