package mot

import "testing"

func TestPreferClass(t *testing.T) {
	cases := []struct {
		existing Class
		known    bool
		observed Class
		expect   Class
	}{
		{ClassPlayer, false, ClassPlayer, ClassPlayer},
		{ClassPlayer, false, ClassReferee, ClassReferee},
		{ClassPlayer, true, ClassGoalkeeper, ClassGoalkeeper},
		{ClassGoalkeeper, true, ClassPlayer, ClassGoalkeeper},
		{ClassReferee, true, ClassGoalkeeper, ClassReferee},
		{ClassPlayer, true, ClassPlayer, ClassPlayer},
		{ClassPlayer, true, Class(7), ClassPlayer},
	}
	for i, tc := range cases {
		got := PreferClass(tc.existing, tc.known, tc.observed)
		if got != tc.expect {
			t.Errorf("[%d] PreferClass(%v, %v, %v) = %v, expected %v", i, tc.existing, tc.known, tc.observed, got, tc.expect)
		}
	}
}

func TestClassString(t *testing.T) {
	if ClassGoalkeeper.String() != "Goalkeeper" || Class(42).String() != "Unknown" {
		t.Error("Unexpected class names")
	}
}
