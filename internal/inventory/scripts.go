package inventory

// Lua scripts for atomic seat-hold operations. Every script runs as one Redis
// transaction, so a multi-seat acquire either claims every seat or none, and
// conflicting operations on the same (showtime, seat) key are serialized by
// the server.

// KEYS[1] = hold id
// ARGV[1] = booking id
// ARGV[2] = showtime id
// ARGV[3] = ttl seconds
// ARGV[4..N] = seat labels
//
// Returns {1} on success, or {0, seat...} listing every contended seat.
const luaHoldAcquire = `
local hold_id = KEYS[1]
local booking_id = ARGV[1]
local showtime_id = ARGV[2]
local ttl = tonumber(ARGV[3])

local sold_key = "seats_sold:" .. showtime_id

-- First pass: collect every seat that is already held or sold, so the caller
-- can report the full conflict set instead of the first one found.
local conflicts = {}
for i = 4, #ARGV do
    local seat = ARGV[i]
    local seat_key = "seat_hold:" .. showtime_id .. ":" .. seat
    if redis.call("EXISTS", seat_key) == 1 or redis.call("SISMEMBER", sold_key, seat) == 1 then
        conflicts[#conflicts + 1] = seat
    end
end

if #conflicts > 0 then
    local out = {0}
    for i = 1, #conflicts do
        out[#out + 1] = conflicts[i]
    end
    return out
end

-- Second pass: claim everything.
local hold_key = "hold:" .. hold_id
local hold_seats_key = "hold_seats:" .. hold_id

redis.call("HMSET", hold_key,
    "booking_id", booking_id,
    "showtime_id", showtime_id,
    "seat_count", #ARGV - 3
)
redis.call("EXPIRE", hold_key, ttl)

for i = 4, #ARGV do
    local seat = ARGV[i]
    local seat_key = "seat_hold:" .. showtime_id .. ":" .. seat
    redis.call("SETEX", seat_key, ttl, hold_id)
    redis.call("SADD", hold_seats_key, seat)
end
redis.call("EXPIRE", hold_seats_key, ttl)

return {1}
`

// KEYS[1] = hold id
//
// Deletes only seat keys still owned by this hold. Releasing a missing or
// expired hold is a no-op.
const luaHoldRelease = `
local hold_id = KEYS[1]
local hold_key = "hold:" .. hold_id
local hold_seats_key = "hold_seats:" .. hold_id

local showtime_id = redis.call("HGET", hold_key, "showtime_id")
if showtime_id then
    local seats = redis.call("SMEMBERS", hold_seats_key)
    for i = 1, #seats do
        local seat_key = "seat_hold:" .. showtime_id .. ":" .. seats[i]
        if redis.call("GET", seat_key) == hold_id then
            redis.call("DEL", seat_key)
        end
    end
end

redis.call("DEL", hold_key)
redis.call("DEL", hold_seats_key)
return {1}
`

// KEYS[1] = hold id
//
// Converts a live hold into permanent sold records. Fails if the hold
// metadata or any seat key has expired or changed owner.
// Returns {1, seat_count} or {0, "expired"}.
const luaHoldCommit = `
local hold_id = KEYS[1]
local hold_key = "hold:" .. hold_id
local hold_seats_key = "hold_seats:" .. hold_id

local showtime_id = redis.call("HGET", hold_key, "showtime_id")
if not showtime_id then
    return {0, "expired"}
end

local seats = redis.call("SMEMBERS", hold_seats_key)
if #seats == 0 then
    return {0, "expired"}
end

for i = 1, #seats do
    local seat_key = "seat_hold:" .. showtime_id .. ":" .. seats[i]
    if redis.call("GET", seat_key) ~= hold_id then
        return {0, "expired"}
    end
end

local sold_key = "seats_sold:" .. showtime_id
for i = 1, #seats do
    redis.call("SADD", sold_key, seats[i])
    redis.call("DEL", "seat_hold:" .. showtime_id .. ":" .. seats[i])
end

redis.call("DEL", hold_key)
redis.call("DEL", hold_seats_key)
return {1, #seats}
`

// KEYS[1] = hold id
// ARGV[1] = new ttl seconds
//
// Re-arms every key belonging to a still-live hold, used to widen the window
// while an external payment is pending. Returns {1} or {0, "expired"}.
const luaHoldExtend = `
local hold_id = KEYS[1]
local ttl = tonumber(ARGV[1])
local hold_key = "hold:" .. hold_id
local hold_seats_key = "hold_seats:" .. hold_id

local showtime_id = redis.call("HGET", hold_key, "showtime_id")
if not showtime_id then
    return {0, "expired"}
end

local seats = redis.call("SMEMBERS", hold_seats_key)
for i = 1, #seats do
    local seat_key = "seat_hold:" .. showtime_id .. ":" .. seats[i]
    if redis.call("GET", seat_key) ~= hold_id then
        return {0, "expired"}
    end
end

redis.call("EXPIRE", hold_key, ttl)
redis.call("EXPIRE", hold_seats_key, ttl)
for i = 1, #seats do
    redis.call("EXPIRE", "seat_hold:" .. showtime_id .. ":" .. seats[i], ttl)
end
return {1}
`
