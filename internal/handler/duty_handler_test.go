package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/takumi/shiftgate/internal/bot"
	"github.com/takumi/shiftgate/internal/model"
)

// dutyFixture は勤務系テストの正常系依存一式を組み立てる。
type dutyFixture struct {
	bot      *mockBot
	links    *mockLinkStringFinder
	fivem    *mockFivemLinkFinder
	settings *mockSettingsStore
	shifts   *mockShiftService
}

func newDutyFixture() *dutyFixture {
	return &dutyFixture{
		bot: &mockBot{
			guildFn: func(id string) *bot.Guild {
				if id == "100" {
					return &bot.Guild{ID: "100", Name: "Alpha", OwnerID: "owner"}
				}
				return nil
			},
			memberFn: func(ctx context.Context, guildID, userID string) (*bot.Member, error) {
				if userID == "discord-1" {
					return &bot.Member{ID: userID}, nil
				}
				return nil, nil
			},
		},
		links: &mockLinkStringFinder{
			findByIDFn: func(ctx context.Context, id string) (*model.LinkString, error) {
				if id == "link-1" {
					return &model.LinkString{ID: id, Guild: "100"}, nil
				}
				return nil, nil
			},
		},
		fivem: &mockFivemLinkFinder{
			findBySteamIDFn: func(ctx context.Context, steamID string) (*model.FivemLink, error) {
				if steamID == "steam-1" {
					return &model.FivemLink{ID: "discord-1", SteamID: steamID}, nil
				}
				return nil, nil
			},
		},
		settings: &mockSettingsStore{
			findByIDFn: func(ctx context.Context, guildID string) (*model.GuildSettings, error) {
				return &model.GuildSettings{
					ID:         guildID,
					ShiftTypes: []model.ShiftType{{ID: "patrol"}},
				}, nil
			},
		},
		shifts: &mockShiftService{},
	}
}

func (f *dutyFixture) handler() *DutyHandler {
	return NewDutyHandler(f.bot, f.links, f.fivem, f.settings, f.shifts)
}

func TestDutyHandler_DutyOn_Success(t *testing.T) {
	f := newDutyFixture()
	var openedMember, openedGuild, openedType string
	f.shifts.openFn = func(ctx context.Context, memberID, guildID, shiftType string) (*model.ShiftEntry, error) {
		openedMember, openedGuild, openedType = memberID, guildID, shiftType
		return &model.ShiftEntry{ID: "shift-1", Guild: guildID, ShiftType: shiftType}, nil
	}

	req := linkedContext(postJSON("/duty_on", `{"steam_id": "steam-1", "shift_type": "patrol"}`))
	w := httptest.NewRecorder()
	f.handler().DutyOn(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if openedMember != "discord-1" || openedGuild != "100" || openedType != "patrol" {
		t.Errorf("Open(%q, %q, %q), want (discord-1, 100, patrol)", openedMember, openedGuild, openedType)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "success" || body["member"] != "discord-1" {
		t.Errorf("body = %v", body)
	}
}

func TestDutyHandler_DutyOn_InvalidShiftType(t *testing.T) {
	f := newDutyFixture()
	f.shifts.openFn = func(ctx context.Context, memberID, guildID, shiftType string) (*model.ShiftEntry, error) {
		t.Fatal("Open should not be called with an invalid shift type")
		return nil, nil
	}

	req := linkedContext(postJSON("/duty_on", `{"steam_id": "steam-1", "shift_type": "dispatch"}`))
	w := httptest.NewRecorder()
	f.handler().DutyOn(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Detail != "Invalid shift type" {
		t.Errorf("detail = %q, want %q", body.Detail, "Invalid shift type")
	}
}

func TestDutyHandler_DutyOn_NoShiftTypeAllowed(t *testing.T) {
	f := newDutyFixture()
	f.shifts.openFn = func(ctx context.Context, memberID, guildID, shiftType string) (*model.ShiftEntry, error) {
		if shiftType != "" {
			t.Errorf("shiftType = %q, want empty", shiftType)
		}
		return &model.ShiftEntry{ID: "shift-1", Guild: guildID}, nil
	}

	req := linkedContext(postJSON("/duty_on", `{"steam_id": "steam-1"}`))
	w := httptest.NewRecorder()
	f.handler().DutyOn(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestDutyHandler_DutyOn_ErrorChain(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(f *dutyFixture)
		body       string
		withToken  bool
		wantCode   int
		wantDetail string
	}{
		{
			name:       "no dynamic token",
			mutate:     func(f *dutyFixture) {},
			body:       `{"steam_id": "steam-1"}`,
			withToken:  false,
			wantCode:   http.StatusUnauthorized,
			wantDetail: "Invalid authorization",
		},
		{
			name: "broken link string",
			mutate: func(f *dutyFixture) {
				f.links.findByIDFn = func(ctx context.Context, id string) (*model.LinkString, error) {
					return nil, nil
				}
			},
			body:       `{"steam_id": "steam-1"}`,
			withToken:  true,
			wantCode:   http.StatusUnauthorized,
			wantDetail: "Invalid link string",
		},
		{
			name: "guild not in cache",
			mutate: func(f *dutyFixture) {
				f.bot.guildFn = func(id string) *bot.Guild { return nil }
			},
			body:       `{"steam_id": "steam-1"}`,
			withToken:  true,
			wantCode:   http.StatusNotFound,
			wantDetail: "Guild not found",
		},
		{
			name:       "missing steam id",
			mutate:     func(f *dutyFixture) {},
			body:       `{}`,
			withToken:  true,
			wantCode:   http.StatusBadRequest,
			wantDetail: "No steam ID provided",
		},
		{
			name: "fivem link not found",
			mutate: func(f *dutyFixture) {
				f.fivem.findBySteamIDFn = func(ctx context.Context, steamID string) (*model.FivemLink, error) {
					return nil, nil
				}
			},
			body:       `{"steam_id": "steam-1"}`,
			withToken:  true,
			wantCode:   http.StatusNotFound,
			wantDetail: "Could not find FiveM link",
		},
		{
			name: "discord member not found",
			mutate: func(f *dutyFixture) {
				f.bot.memberFn = func(ctx context.Context, guildID, userID string) (*bot.Member, error) {
					return nil, nil
				}
			},
			body:       `{"steam_id": "steam-1"}`,
			withToken:  true,
			wantCode:   http.StatusNotFound,
			wantDetail: "Could not find Discord member",
		},
		{
			name: "settings not found",
			mutate: func(f *dutyFixture) {
				f.settings.findByIDFn = func(ctx context.Context, guildID string) (*model.GuildSettings, error) {
					return nil, nil
				}
			},
			body:       `{"steam_id": "steam-1"}`,
			withToken:  true,
			wantCode:   http.StatusNotFound,
			wantDetail: "Could not find settings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDutyFixture()
			tt.mutate(f)

			req := postJSON("/duty_on", tt.body)
			if tt.withToken {
				req = linkedContext(req)
			}
			w := httptest.NewRecorder()
			f.handler().DutyOn(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			var body struct {
				Detail string `json:"detail"`
			}
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Detail != tt.wantDetail {
				t.Errorf("detail = %q, want %q", body.Detail, tt.wantDetail)
			}
		})
	}
}

func TestDutyHandler_DutyOff_TokenPath(t *testing.T) {
	f := newDutyFixture()
	var closedMember, closedGuild string
	f.shifts.closeFn = func(ctx context.Context, memberID, guildID string) (*model.ShiftEntry, error) {
		closedMember, closedGuild = memberID, guildID
		return &model.ShiftEntry{ID: "shift-1", Guild: guildID, EndedAt: 123}, nil
	}

	req := linkedContext(postJSON("/duty_off", `{"steam_id": "steam-1"}`))
	w := httptest.NewRecorder()
	f.handler().DutyOff(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if closedMember != "discord-1" || closedGuild != "100" {
		t.Errorf("Close(%q, %q), want (discord-1, 100)", closedMember, closedGuild)
	}
}

func TestDutyHandler_DutyOff_StaticPathUsesBodyGuild(t *testing.T) {
	f := newDutyFixture()
	var closedGuild string
	f.shifts.closeFn = func(ctx context.Context, memberID, guildID string) (*model.ShiftEntry, error) {
		closedGuild = guildID
		return &model.ShiftEntry{ID: "shift-1", Guild: guildID}, nil
	}

	// コンテキストにトークンなし = 静的トークン経由
	req := postJSON("/duty_off", `{"guild": "100", "steam_id": "steam-1"}`)
	w := httptest.NewRecorder()
	f.handler().DutyOff(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if closedGuild != "100" {
		t.Errorf("closed guild = %q, want 100", closedGuild)
	}
}

func TestDutyHandler_DutyOff_StaticPathAcceptsNumericGuildID(t *testing.T) {
	f := newDutyFixture()
	var closedGuild string
	f.shifts.closeFn = func(ctx context.Context, memberID, guildID string) (*model.ShiftEntry, error) {
		closedGuild = guildID
		return &model.ShiftEntry{ID: "shift-1", Guild: guildID}, nil
	}

	req := postJSON("/duty_off", `{"guild": 100, "steam_id": "steam-1"}`)
	w := httptest.NewRecorder()
	f.handler().DutyOff(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if closedGuild != "100" {
		t.Errorf("closed guild = %q, want 100", closedGuild)
	}
}

func TestDutyHandler_DutyOff_StaticPathMissingBody(t *testing.T) {
	f := newDutyFixture()
	f.shifts.closeFn = func(ctx context.Context, memberID, guildID string) (*model.ShiftEntry, error) {
		t.Fatal("Close should not be called without a body")
		return nil, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/duty_off", nil)
	w := httptest.NewRecorder()
	f.handler().DutyOff(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Detail != "No body provided" {
		t.Errorf("detail = %q, want %q", body.Detail, "No body provided")
	}
}

func TestDutyHandler_DutyOff_StaticPathUnknownGuild(t *testing.T) {
	f := newDutyFixture()

	req := postJSON("/duty_off", `{"guild": "999", "steam_id": "steam-1"}`)
	w := httptest.NewRecorder()
	f.handler().DutyOff(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestDutyHandler_DutyOff_NoOpenShift(t *testing.T) {
	f := newDutyFixture()
	f.shifts.closeFn = func(ctx context.Context, memberID, guildID string) (*model.ShiftEntry, error) {
		return nil, model.NewShiftNotFoundError()
	}

	req := linkedContext(postJSON("/duty_off", `{"steam_id": "steam-1"}`))
	w := httptest.NewRecorder()
	f.handler().DutyOff(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Detail != "Could not find user shifts" {
		t.Errorf("detail = %q, want %q", body.Detail, "Could not find user shifts")
	}
}

func TestDutyHandler_GetOnlineStaff(t *testing.T) {
	f := newDutyFixture()
	f.shifts.onlineByGuildFn = func(ctx context.Context, guildID string) ([]model.OnlineStaff, error) {
		if guildID != "100" {
			t.Errorf("guildID = %q, want 100", guildID)
		}
		return []model.OnlineStaff{
			{
				ShiftEntry: model.ShiftEntry{ID: "shift-1", Guild: guildID, StartedAt: 100},
				Discord:    "discord-1",
				Fivem:      "steam-1",
			},
		}, nil
	}

	req := linkedContext(httptest.NewRequest(http.MethodGet, "/get_online_staff", nil))
	w := httptest.NewRecorder()
	f.handler().GetOnlineStaff(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var staff []model.OnlineStaff
	if err := json.NewDecoder(w.Body).Decode(&staff); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(staff) != 1 {
		t.Fatalf("got %d entries, want 1", len(staff))
	}
	if staff[0].Discord != "discord-1" || staff[0].Fivem != "steam-1" {
		t.Errorf("entry = %+v", staff[0])
	}
}
